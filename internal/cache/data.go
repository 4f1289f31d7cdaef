package cache

// Cached payload

// Artifact is the immutable record stored for a URL: a title and a
// long-form markdown summary. Once written under a key, a read returns
// the identical bytes until the key is overwritten or deleted.
type Artifact struct {
	title   string
	summary string
}

func NewArtifact(title string, summary string) Artifact {
	return Artifact{
		title:   title,
		summary: summary,
	}
}

func (a Artifact) Title() string {
	return a.title
}

// Summary returns the long-form summary in markdown.
func (a Artifact) Summary() string {
	return a.summary
}

// artifactDTO is the wire shape of an Artifact: a UTF-8 JSON object,
// gzip-compressed before upload.
type artifactDTO struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}
