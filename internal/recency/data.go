package recency

import (
	"time"

	"github.com/wibisana/skimcache/pkg/timeutil"
)

// Recency view

// Entry is one row of a top-K result: the decoded URL and the
// backend-assigned creation instant of its stored artifact. Ordering
// between entries always compares the instant, never a rendered string.
type Entry struct {
	url       string
	createdAt time.Time
}

func NewEntry(url string, createdAt time.Time) Entry {
	return Entry{url: url, createdAt: createdAt}
}

func (e Entry) URL() string {
	return e.url
}

func (e Entry) CreatedAt() time.Time {
	return e.createdAt
}

// DisplayTime renders the creation instant for listings,
// e.g. "2026-08-26 14:03 UTC".
func (e Entry) DisplayTime() string {
	return timeutil.FormatMinuteUTC(e.createdAt)
}
