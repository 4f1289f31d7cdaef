package urlutil

import (
	"net/url"
	"strings"
)

// ValidateHTTPS normalizes a candidate string into a validated HTTPS URL.
// A bare "host/path" candidate gets an "https://" prefix before parsing;
// candidates that already carry a scheme are parsed as-is, so "http://"
// (or anything else that is not https) is rejected rather than silently
// rewritten.
//
// Properties:
//   - Pure: no state, no I/O
//   - Deterministic: same input always produces same output
//   - Idempotent: validating an already-validated URL string accepts it
//     and returns the same URL
//
// The gate runs on inbound write requests and on every key decoded back
// from storage, so foreign or corrupted keys can never be served as if
// they were valid cached URLs.
func ValidateHTTPS(candidate string) (url.URL, bool) {
	if candidate == "" {
		return url.URL{}, false
	}

	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return url.URL{}, false
	}

	if parsed.Scheme != "https" {
		return url.URL{}, false
	}

	if parsed.Hostname() == "" {
		return url.URL{}, false
	}

	return *parsed, true
}
