package metadata

import (
	"fmt"
	"log"
	"strings"
	"time"
)

/*
MetadataSink captures structured service events.
It must not:
- perform I/O decisions
- affect control flow
- impose a logging backend on its callers
Ordering guarantees:
- Events are recorded synchronously in the order a single goroutine emits them.
- No global ordering across goroutines is guaranteed.
- Consumers MUST NOT assume total ordering across the process.
*/
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	// RecordRequest captures one completed HTTP request.
	RecordRequest(method string, path string, status int, duration time.Duration, attrs []Attribute)

	// RecordStorage captures one object-store operation (put, get,
	// delete, exists) against a single key.
	RecordStorage(op string, key string, sizeByte int, duration time.Duration, attrs []Attribute)

	// RecordFetch captures one outbound page fetch, including the
	// attempts burned on retries.
	RecordFetch(url string, status int, sizeByte int, duration time.Duration, retryCount int)

	// RecordListing captures one full recency scan: pages consumed,
	// entries seen, entries surviving the bounded selection.
	RecordListing(pages int, scanned int, kept int, duration time.Duration)

	// RecordSummarize captures one summarization call.
	RecordSummarize(model string, contentByte int, summaryByte int, duration time.Duration)
}

// LogRecorder is a MetadataSink backed by the standard library logger.
// It renders each event as a single line; it holds no state and is safe
// for concurrent use.
type LogRecorder struct {
	logger *log.Logger
}

func NewLogRecorder(logger *log.Logger) *LogRecorder {
	if logger == nil {
		logger = log.Default()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	r.logger.Printf("error package=%s action=%s cause=%s details=%q%s",
		packageName, action, cause, details, formatAttrs(attrs))
}

func (r *LogRecorder) RecordRequest(method string, path string, status int, duration time.Duration, attrs []Attribute) {
	r.logger.Printf("request method=%s path=%s status=%d duration=%s%s",
		method, path, status, duration, formatAttrs(attrs))
}

func (r *LogRecorder) RecordStorage(op string, key string, sizeByte int, duration time.Duration, attrs []Attribute) {
	r.logger.Printf("storage op=%s key=%s size=%d duration=%s%s",
		op, key, sizeByte, duration, formatAttrs(attrs))
}

func (r *LogRecorder) RecordFetch(url string, status int, sizeByte int, duration time.Duration, retryCount int) {
	r.logger.Printf("fetch url=%s status=%d size=%d duration=%s retries=%d",
		url, status, sizeByte, duration, retryCount)
}

func (r *LogRecorder) RecordListing(pages int, scanned int, kept int, duration time.Duration) {
	r.logger.Printf("listing pages=%d scanned=%d kept=%d duration=%s",
		pages, scanned, kept, duration)
}

func (r *LogRecorder) RecordSummarize(model string, contentByte int, summaryByte int, duration time.Duration) {
	r.logger.Printf("summarize model=%s content_bytes=%d summary_bytes=%d duration=%s",
		model, contentByte, summaryByte, duration)
}

func formatAttrs(attrs []Attribute) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, attr := range attrs {
		fmt.Fprintf(&b, " %s=%q", attr.Key, attr.Value)
	}
	return b.String()
}
