package web

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts a stored Markdown summary to HTML for the
// summary page. Parser and renderer instances are stateful and cannot
// be shared between renders.
func renderMarkdown(source string) template.HTML {
	p := parser.NewWithExtensions(
		parser.CommonExtensions | parser.HardLineBreak | parser.NoEmptyLineBeforeBlock,
	)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags,
	})
	rendered := markdown.ToHTML([]byte(source), p, renderer)
	return template.HTML(rendered)
}
