package readable

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/failure"
)

/*
Responsibilities
- Parse fetched HTML into a DOM tree
- Isolate the main content container
- Resolve a display title for the page
- Convert the container to Markdown for summarization

Extraction Strategy
- Priority order:
	- Semantic containers (main, article)
	- [role="main"]
	- <body> as last resort
- A container only wins if it holds substantive text; link-farm
  containers (navigation) are rejected on link density.

Title Strategy
- <title> text when present, first <h1> otherwise, the source host as
  last resort.
*/

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(
	metadataSink metadata.MetadataSink,
) DomExtractor {
	return DomExtractor{
		metadataSink: metadataSink,
	}
}

func (d *DomExtractor) Extract(
	sourceUrl url.URL,
	htmlByte []byte,
) (Document, failure.ClassifiedError) {
	document, err := extract(sourceUrl, htmlByte)
	if err != nil {
		var extractionError *ExtractionError
		errors.As(err, &extractionError)
		d.metadataSink.RecordError(
			time.Now(),
			"readable",
			"DomExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
			},
		)
		return Document{}, extractionError
	}
	return document, nil
}

func extract(sourceUrl url.URL, htmlByte []byte) (Document, error) {
	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return Document{}, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	gqDoc := goquery.NewDocumentFromNode(doc)

	contentNode := selectContentNode(gqDoc)
	if contentNode == nil {
		return Document{}, &ExtractionError{
			Message:   "no meaningful content container found",
			Retryable: false,
			Cause:     ErrCauseNoContent,
		}
	}

	markdown, convErr := convertToMarkdown(contentNode)
	if convErr != nil {
		return Document{}, convErr
	}

	return NewDocument(resolveTitle(gqDoc, sourceUrl), markdown), nil
}

// selectContentNode applies the container priority order. Each
// candidate must pass the meaningful-content check before it wins.
func selectContentNode(gqDoc *goquery.Document) *html.Node {
	for _, selector := range []string{"main", "article", "[role='main']", "body"} {
		selection := gqDoc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if node := selection.Nodes[0]; isMeaningful(node) {
			return node
		}
	}
	return nil
}

func resolveTitle(gqDoc *goquery.Document, sourceUrl url.URL) string {
	if title := strings.TrimSpace(gqDoc.Find("title").First().Text()); title != "" {
		return title
	}
	if heading := strings.TrimSpace(gqDoc.Find("h1").First().Text()); heading != "" {
		return heading
	}
	return sourceUrl.Hostname()
}

func convertToMarkdown(contentNode *html.Node) (string, *ExtractionError) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdown, err := conv.ConvertNode(contentNode)
	if err != nil {
		return "", &ExtractionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}
	return string(markdown), nil
}

// isMeaningful checks if a node contains meaningful content: enough
// non-whitespace text, at least one paragraph, heading or code block,
// and not just a wall of navigation links.
func isMeaningful(node *html.Node) bool {
	if node == nil {
		return false
	}

	var stats struct {
		textLength     int
		nonWhitespace  int
		headings       int
		paragraphs     int
		codeBlocks     int
		links          int
		linkTextLength int
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}

		switch n.Type {
		case html.TextNode:
			stats.textLength += len(n.Data)
			for _, r := range n.Data {
				if !unicode.IsSpace(r) {
					stats.nonWhitespace++
				}
			}

		case html.ElementNode:
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				stats.headings++
			case "p":
				stats.paragraphs++
			case "pre", "code":
				stats.codeBlocks++
			case "a":
				stats.links++
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						stats.linkTextLength += len(strings.TrimSpace(c.Data))
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(node)

	const minNonWhitespace = 50
	const maxLinkDensity = 0.8

	if stats.nonWhitespace < minNonWhitespace {
		return false
	}

	if stats.textLength > 0 {
		linkDensity := float64(stats.linkTextLength) / float64(stats.textLength)
		if linkDensity > maxLinkDensity && stats.links > 2 {
			return false
		}
	}

	hasContent := stats.paragraphs >= 1 || stats.codeBlocks >= 1
	hasHeadingsWithText := stats.headings > 0 && stats.nonWhitespace >= 20

	return hasContent || hasHeadingsWithText
}
