package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/wibisana/skimcache/internal/fetcher"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/retry"
	"github.com/wibisana/skimcache/pkg/timeutil"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	fetchEvents []fetchEvent
	errorEvents []errorEvent
}

type fetchEvent struct {
	fetchUrl   string
	httpStatus int
	sizeByte   int
	duration   time.Duration
	retryCount int
}

type errorEvent struct {
	observedAt  time.Time
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, errorEvent{
		observedAt:  observedAt,
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
		attrs:       attrs,
	})
}

func (m *mockMetadataSink) RecordRequest(method string, path string, status int, duration time.Duration, attrs []metadata.Attribute) {
}

func (m *mockMetadataSink) RecordStorage(op string, key string, sizeByte int, duration time.Duration, attrs []metadata.Attribute) {
}

func (m *mockMetadataSink) RecordFetch(fetchUrl string, httpStatus int, sizeByte int, duration time.Duration, retryCount int) {
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:   fetchUrl,
		httpStatus: httpStatus,
		sizeByte:   sizeByte,
		duration:   duration,
		retryCount: retryCount,
	})
}

func (m *mockMetadataSink) RecordListing(pages int, scanned int, kept int, duration time.Duration) {
}

func (m *mockMetadataSink) RecordSummarize(model string, contentByte int, summaryByte int, duration time.Duration) {
}

// createTestRetryParam creates retry parameters for testing
func createTestRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		10*time.Millisecond, // jitter
		42,                  // randomSeed
		maxAttempts,         // maxAttempts
		timeutil.NewBackoffParam(
			10*time.Millisecond,
			2.0,
			50*time.Millisecond,
		),
	)
}

func TestHtmlFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello World</body></html>"))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, 5*time.Second)

	fetchUrl, _ := url.Parse(server.URL)
	result, err := f.Fetch(context.Background(), fetcher.NewFetchParam(*fetchUrl, "test-user-agent"), createTestRetryParam(3))

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Code() != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, result.Code())
	}

	if string(result.Body()) != "<html><body>Hello World</body></html>" {
		t.Errorf("unexpected body: %s", string(result.Body()))
	}

	if len(sink.fetchEvents) != 1 {
		t.Fatalf("expected 1 fetch event, got %d", len(sink.fetchEvents))
	}

	fetchEvt := sink.fetchEvents[0]
	if fetchEvt.fetchUrl != server.URL {
		t.Errorf("expected URL %s, got %s", server.URL, fetchEvt.fetchUrl)
	}
	if fetchEvt.httpStatus != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, fetchEvt.httpStatus)
	}

	if len(sink.errorEvents) != 0 {
		t.Errorf("expected 0 error events, got %d", len(sink.errorEvents))
	}
}

func TestHtmlFetcher_Fetch_SendsBrowserHeaders(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, 5*time.Second)

	fetchUrl, _ := url.Parse(server.URL)
	_, err := f.Fetch(context.Background(), fetcher.NewFetchParam(*fetchUrl, "skimcache-agent"), createTestRetryParam(1))

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if gotUserAgent != "skimcache-agent" {
		t.Errorf("expected configured user agent, got %q", gotUserAgent)
	}
}

func TestHtmlFetcher_Fetch_NonHTMLContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "not html"}`))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, 5*time.Second)

	fetchUrl, _ := url.Parse(server.URL)
	_, err := f.Fetch(context.Background(), fetcher.NewFetchParam(*fetchUrl, "test-user-agent"), createTestRetryParam(3))

	if err == nil {
		t.Fatal("expected error for non-HTML content, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", err)
	}

	if fetchErr.IsRetryable() {
		t.Error("expected non-retryable error for invalid content type")
	}

	if len(sink.errorEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(sink.errorEvents))
	}

	if sink.errorEvents[0].packageName != "fetcher" {
		t.Errorf("expected package name 'fetcher', got %s", sink.errorEvents[0].packageName)
	}
}

func TestHtmlFetcher_Fetch_HTTP404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, 5*time.Second)

	fetchUrl, _ := url.Parse(server.URL)
	_, err := f.Fetch(context.Background(), fetcher.NewFetchParam(*fetchUrl, "test-user-agent"), createTestRetryParam(3))

	if err == nil {
		t.Fatal("expected error for 404, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", err)
	}

	if fetchErr.IsRetryable() {
		t.Error("expected non-retryable error for 404")
	}
}

func TestHtmlFetcher_Fetch_HTTP500_RetriedThenExhausted(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, 5*time.Second)

	fetchUrl, _ := url.Parse(server.URL)
	_, err := f.Fetch(context.Background(), fetcher.NewFetchParam(*fetchUrl, "test-user-agent"), createTestRetryParam(2))

	if err == nil {
		t.Fatal("expected error after retries exhausted, got nil")
	}

	if requestCount != 2 {
		t.Errorf("expected 2 attempts, got %d", requestCount)
	}

	var retryErr *retry.RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryError after exhaustion, got %T", err)
	}
}

func TestHtmlFetcher_Fetch_HTTP500_EventualSuccess(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, 5*time.Second)

	fetchUrl, _ := url.Parse(server.URL)
	result, err := f.Fetch(context.Background(), fetcher.NewFetchParam(*fetchUrl, "test-user-agent"), createTestRetryParam(3))

	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if string(result.Body()) != "<html>ok</html>" {
		t.Errorf("unexpected body: %s", string(result.Body()))
	}
	if requestCount != 3 {
		t.Errorf("expected 3 attempts, got %d", requestCount)
	}
}
