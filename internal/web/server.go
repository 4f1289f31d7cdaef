package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wibisana/skimcache/internal/cache"
	"github.com/wibisana/skimcache/internal/config"
	"github.com/wibisana/skimcache/internal/fetcher"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/internal/readable"
	"github.com/wibisana/skimcache/internal/recency"
	"github.com/wibisana/skimcache/internal/summarize"
	"github.com/wibisana/skimcache/internal/urlcodec"
	"github.com/wibisana/skimcache/pkg/limiter"
	"github.com/wibisana/skimcache/pkg/retry"
	"github.com/wibisana/skimcache/pkg/timeutil"
	"github.com/wibisana/skimcache/pkg/urlutil"
)

/*
Server glues the domain packages into an HTTP surface.

Routes:
  - POST /summarize              submit a URL (plus optional content) for summarization
  - GET  /recent                 list the most recently summarized URLs
  - GET  /{encodedURL}           render a cached summary as HTML
  - GET  /raw/{encodedURL}       dump a cached summary as plain text
  - DELETE /delete/{encodedURL}  remove a cached summary

Handler semantics:
  - Invalid or non-https URLs are rejected with 400 before any
    collaborator is called.
  - A cache miss on the read paths is 404, never an error page.
  - The summarize route is bounded by the in-flight limiter; excess
    requests are shed with 503.
*/
type Server struct {
	store        *cache.Store
	index        *recency.Index
	summarizer   summarize.Summarizer
	pageFetcher  fetcher.Fetcher
	extractor    *readable.DomExtractor
	inflight     limiter.InflightLimiter
	metadataSink metadata.MetadataSink

	userAgent        string
	maxRecentEntries int
	fetchTimeout     time.Duration
	summarizeTimeout time.Duration
	retryParam       retry.RetryParam
}

func NewServer(
	cfg config.Config,
	store *cache.Store,
	index *recency.Index,
	summarizer summarize.Summarizer,
	pageFetcher fetcher.Fetcher,
	extractor *readable.DomExtractor,
	inflight limiter.InflightLimiter,
	metadataSink metadata.MetadataSink,
) *Server {
	return &Server{
		store:            store,
		index:            index,
		summarizer:       summarizer,
		pageFetcher:      pageFetcher,
		extractor:        extractor,
		inflight:         inflight,
		metadataSink:     metadataSink,
		userAgent:        cfg.UserAgent(),
		maxRecentEntries: cfg.MaxRecentEntries(),
		fetchTimeout:     cfg.FetchTimeout(),
		summarizeTimeout: cfg.SummarizeTimeout(),
		retryParam: retry.NewRetryParam(
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			timeutil.NewBackoffParam(
				cfg.BackoffInitialDuration(),
				cfg.BackoffMultiplier(),
				cfg.BackoffMaxDuration(),
			),
		),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", http.RedirectHandler("/recent", http.StatusFound))
	mux.Handle("POST /summarize", s.route("POST /summarize",
		withInflightLimit(s.inflight, http.HandlerFunc(s.handleSummarize))))
	mux.Handle("GET /recent", s.route("GET /recent",
		withGzip(http.HandlerFunc(s.handleRecent))))
	mux.Handle("DELETE /delete/{encodedURL}", s.route("DELETE /delete/{encodedURL}",
		http.HandlerFunc(s.handleDelete)))
	mux.Handle("GET /raw/{encodedURL}", s.route("GET /raw/{encodedURL}",
		http.HandlerFunc(s.handleRaw)))
	mux.Handle("GET /{encodedURL}", s.route("GET /{encodedURL}",
		withGzip(http.HandlerFunc(s.handleSummary))))

	return mux
}

func (s *Server) route(pattern string, next http.Handler) http.Handler {
	return withRequestMetadata(s.metadataSink, pattern, next)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form data", http.StatusBadRequest)
		return
	}

	rawURL := r.FormValue("url")
	if rawURL == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	targetURL, ok := urlutil.ValidateHTTPS(rawURL)
	if !ok {
		http.Error(w, "Invalid URL", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")

	// Without submitted content the page is fetched and reduced to
	// readable Markdown first.
	if content == "" {
		fetchCtx, cancel := context.WithTimeout(r.Context(), s.fetchTimeout)
		defer cancel()

		result, fetchErr := s.pageFetcher.Fetch(
			fetchCtx,
			fetcher.NewFetchParam(targetURL, s.userAgent),
			s.retryParam,
		)
		if fetchErr != nil {
			http.Error(w, "Failed to fetch page", http.StatusBadGateway)
			return
		}

		document, extractErr := s.extractor.Extract(targetURL, result.Body())
		if extractErr != nil {
			http.Error(w, "Failed to extract readable content", http.StatusUnprocessableEntity)
			return
		}

		content = document.Markdown()
		if title == "" {
			title = document.Title()
		}
	}
	if title == "" {
		title = targetURL.Hostname()
	}

	summarizeCtx, cancel := context.WithTimeout(r.Context(), s.summarizeTimeout)
	defer cancel()

	summary, summarizeErr := s.summarizer.Summarize(summarizeCtx, content)
	if summarizeErr != nil {
		http.Error(w, "Failed to summarize content", http.StatusBadGateway)
		return
	}

	if putErr := s.store.Put(r.Context(), targetURL.String(), cache.NewArtifact(title, summary)); putErr != nil {
		http.Error(w, "Failed to store summary", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/"+urlcodec.EncodePath(targetURL.String()), http.StatusSeeOther)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	targetURL, ok := s.decodePathURL(r.PathValue("encodedURL"))
	if !ok {
		s.renderSummaryError(w, http.StatusBadRequest, "Invalid URL. Must be HTTPS.")
		return
	}

	artifact, found, err := s.store.Get(r.Context(), targetURL)
	if err != nil {
		s.renderSummaryError(w, http.StatusInternalServerError, "Error processing request")
		return
	}
	if !found {
		s.renderSummaryError(w, http.StatusNotFound, "Summary not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = summaryTemplate.Execute(w, summaryView{
		Title:   artifact.Title(),
		URL:     targetURL,
		Summary: renderMarkdown(artifact.Summary()),
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := s.index.TopK(r.Context(), s.maxRecentEntries)
	if err != nil {
		http.Error(w, "Error listing recent summaries", http.StatusInternalServerError)
		return
	}

	rows := make([]listRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, listRow{
			EncodedURL: urlcodec.EncodePath(entry.URL()),
			Timestamp:  entry.DisplayTime(),
			Title:      displayName(entry.URL()),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = listTemplate.Execute(w, listView{Rows: rows})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	targetURL, ok := s.decodePathURL(r.PathValue("encodedURL"))
	if !ok {
		http.Error(w, "Invalid URL", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.Delete(r.Context(), targetURL)
	if err != nil {
		http.Error(w, "Error deleting summary", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Deleted")
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	targetURL, ok := s.decodePathURL(r.PathValue("encodedURL"))
	if !ok {
		http.Error(w, "Invalid URL", http.StatusBadRequest)
		return
	}

	artifact, found, err := s.store.Get(r.Context(), targetURL)
	if err != nil {
		http.Error(w, "Error reading cached summary", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Not found in cache", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Title: %s\n\nSummary:\n%s", artifact.Title(), artifact.Summary())
}

// decodePathURL reverses a path segment back to a validated https URL.
func (s *Server) decodePathURL(encoded string) (string, bool) {
	rawURL, decodeErr := urlcodec.DecodePath(encoded)
	if decodeErr != nil {
		return "", false
	}
	targetURL, ok := urlutil.ValidateHTTPS(rawURL)
	if !ok {
		return "", false
	}
	return targetURL.String(), true
}

func (s *Server) renderSummaryError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = summaryTemplate.Execute(w, summaryView{
		Title: "Error",
		Error: message,
	})
}

// displayName shortens a URL for the recent listing.
func displayName(rawURL string) string {
	return strings.TrimSuffix(strings.TrimPrefix(rawURL, "https://"), "/")
}
