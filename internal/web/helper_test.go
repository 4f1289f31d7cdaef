package web_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/wibisana/skimcache/internal/blob"
	"github.com/wibisana/skimcache/internal/cache"
	"github.com/wibisana/skimcache/internal/config"
	"github.com/wibisana/skimcache/internal/fetcher"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/internal/readable"
	"github.com/wibisana/skimcache/internal/recency"
	"github.com/wibisana/skimcache/internal/summarize"
	"github.com/wibisana/skimcache/internal/web"
	"github.com/wibisana/skimcache/pkg/failure"
	"github.com/wibisana/skimcache/pkg/limiter"
	"github.com/wibisana/skimcache/pkg/retry"
)

type sinkMock struct {
	requests []requestEvent
}

type requestEvent struct {
	method    string
	path      string
	status    int
	requestID string
}

func (m *sinkMock) RecordError(observedAt time.Time, packageName string, action string, cause metadata.ErrorCause, details string, attrs []metadata.Attribute) {
}

func (m *sinkMock) RecordRequest(method string, path string, status int, duration time.Duration, attrs []metadata.Attribute) {
	event := requestEvent{method: method, path: path, status: status}
	for _, attr := range attrs {
		if attr.Key == metadata.AttrRequestID {
			event.requestID = attr.Value
		}
	}
	m.requests = append(m.requests, event)
}

func (m *sinkMock) RecordStorage(op string, key string, sizeByte int, duration time.Duration, attrs []metadata.Attribute) {
}

func (m *sinkMock) RecordFetch(url string, status int, sizeByte int, duration time.Duration, retryCount int) {
}

func (m *sinkMock) RecordListing(pages int, scanned int, kept int, duration time.Duration) {}

func (m *sinkMock) RecordSummarize(model string, contentByte int, summaryByte int, duration time.Duration) {
}

// stubSummarizer returns a fixed summary, or a classified error when
// configured to fail.
type stubSummarizer struct {
	summary   string
	err       failure.ClassifiedError
	lastInput string
	calls     int
}

func (s *stubSummarizer) Summarize(ctx context.Context, content string) (string, failure.ClassifiedError) {
	s.calls++
	s.lastInput = content
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func (s *stubSummarizer) Model() string {
	return "stub-model"
}

// stubFetcher serves a canned HTML body for any URL.
type stubFetcher struct {
	body []byte
	err  failure.ClassifiedError
}

func (f *stubFetcher) Fetch(ctx context.Context, fetchParam fetcher.FetchParam, retryParam retry.RetryParam) (fetcher.FetchResult, failure.ClassifiedError) {
	if f.err != nil {
		return fetcher.FetchResult{}, f.err
	}
	fetchUrl, _ := url.Parse("https://example.com/article")
	return fetcher.NewFetchResultForTest(*fetchUrl, f.body, 200, "text/html"), nil
}

type testEnv struct {
	server  *web.Server
	store   *cache.Store
	objects *blob.MemoryStore
	sink    *sinkMock
}

func newTestEnv(t *testing.T, summarizer summarize.Summarizer, pageFetcher fetcher.Fetcher) *testEnv {
	t.Helper()

	cfg, err := config.WithDefault("").
		WithMemoryStore(true).
		WithMaxRecentEntries(50).
		WithMaxAttempt(1).
		Build()
	if err != nil {
		t.Fatalf("failed to build test config: %v", err)
	}

	sink := &sinkMock{}
	objects := blob.NewMemoryStore()
	store := cache.NewStore(objects, sink)
	index := recency.NewIndex(objects, sink, cfg.ListPageSize())
	extractor := readable.NewDomExtractor(sink)
	inflight := limiter.NewConcurrentInflightLimiter(cfg.MaxInflightSummaries())

	server := web.NewServer(cfg, &store, index, summarizer, pageFetcher, &extractor, inflight, sink)
	return &testEnv{
		server:  server,
		store:   &store,
		objects: objects,
		sink:    sink,
	}
}
