package readable

// Representation

// Document is the readable projection of a fetched page: the page
// title and the main content converted to Markdown.
type Document struct {
	title    string
	markdown string
}

func NewDocument(title string, markdown string) Document {
	return Document{
		title:    title,
		markdown: markdown,
	}
}

func (d *Document) Title() string {
	return d.title
}

func (d *Document) Markdown() string {
	return d.markdown
}
