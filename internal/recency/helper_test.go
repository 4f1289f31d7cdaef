package recency

import (
	"context"
	"time"

	"github.com/wibisana/skimcache/internal/blob"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/failure"
)

// pagedStore serves a fixed sequence of listing pages and lets a test
// inject a failure at a given page. Only List matters here; the write
// paths are never reached by the index.
type pagedStore struct {
	pages       [][]blob.ObjectInfo
	failAtPage  int
	listCalls   int
	cancelAfter context.CancelFunc
}

func (s *pagedStore) Put(ctx context.Context, key string, payload []byte) failure.ClassifiedError {
	panic("not used")
}

func (s *pagedStore) Get(ctx context.Context, key string) ([]byte, bool, failure.ClassifiedError) {
	panic("not used")
}

func (s *pagedStore) Delete(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	panic("not used")
}

func (s *pagedStore) Exists(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	panic("not used")
}

func (s *pagedStore) List(ctx context.Context, pageSize int, pageToken string) (blob.Page, failure.ClassifiedError) {
	s.listCalls++
	if s.failAtPage > 0 && s.listCalls >= s.failAtPage {
		return blob.Page{}, &blob.BlobError{
			Message:   "listing backend unavailable",
			Retryable: true,
			Cause:     blob.ErrCauseListFailure,
		}
	}

	index := 0
	if pageToken != "" {
		for i := range s.pages {
			if pageTokenFor(i) == pageToken {
				index = i + 1
				break
			}
		}
	}
	if index >= len(s.pages) {
		return blob.NewPage(nil, ""), nil
	}

	next := ""
	if index < len(s.pages)-1 {
		next = pageTokenFor(index)
	}
	if s.cancelAfter != nil {
		s.cancelAfter()
	}
	return blob.NewPage(s.pages[index], next), nil
}

func pageTokenFor(index int) string {
	return string(rune('a' + index))
}

type sinkMock struct {
	errorCauses  []metadata.ErrorCause
	errorDetails []string
	listingPages int
	listingScans int
	listingKept  int
	listingCalls int
}

func (m *sinkMock) RecordError(observedAt time.Time, packageName string, action string, cause metadata.ErrorCause, details string, attrs []metadata.Attribute) {
	m.errorCauses = append(m.errorCauses, cause)
	m.errorDetails = append(m.errorDetails, details)
}

func (m *sinkMock) RecordRequest(method string, path string, status int, duration time.Duration, attrs []metadata.Attribute) {}

func (m *sinkMock) RecordStorage(op string, key string, sizeByte int, duration time.Duration, attrs []metadata.Attribute) {
}

func (m *sinkMock) RecordFetch(url string, status int, sizeByte int, duration time.Duration, retryCount int) {
}

func (m *sinkMock) RecordListing(pages int, scanned int, kept int, duration time.Duration) {
	m.listingCalls++
	m.listingPages = pages
	m.listingScans = scanned
	m.listingKept = kept
}

func (m *sinkMock) RecordSummarize(model string, contentByte int, summaryByte int, duration time.Duration) {
}
