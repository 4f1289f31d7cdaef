package summarize

import (
	"context"

	"github.com/wibisana/skimcache/pkg/failure"
)

// Summarizer turns extracted page content into a Markdown summary.
// Implementations own their model configuration; callers only see the
// resulting text or a classified error.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, failure.ClassifiedError)
	Model() string
}
