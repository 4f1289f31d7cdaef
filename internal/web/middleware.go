package web

import (
	"compress/gzip"
	"net/http"
	"strings"
	"time"

	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/limiter"
)

// statusRecorder captures the response status for request metadata.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// withRequestMetadata records method, route pattern, status and
// duration of every completed request. An inbound X-Request-ID is
// echoed on the response and attached to the event so a reverse proxy
// can correlate its own log lines with ours.
func withRequestMetadata(metadataSink metadata.MetadataSink, pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}

		var attrs []metadata.Attribute
		if requestID != "" {
			attrs = append(attrs, metadata.NewAttr(metadata.AttrRequestID, requestID))
		}
		metadataSink.RecordRequest(r.Method, pattern, recorder.status, time.Since(startTime), attrs)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}

// withGzip compresses responses for clients that accept it. The
// Content-Length header is dropped since the compressed size is not
// known up front.
func withGzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(strings.ToLower(r.Header.Get("Accept-Encoding")), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")

		gz := gzip.NewWriter(w)
		defer gz.Close()

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, writer: gz}, r)
	})
}

// withInflightLimit sheds load once the configured number of
// summarization requests is already being served.
func withInflightLimit(inflight limiter.InflightLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !inflight.TryAcquire() {
			http.Error(w, "Too many requests in flight", http.StatusServiceUnavailable)
			return
		}
		defer inflight.Release()

		next.ServeHTTP(w, r)
	})
}
