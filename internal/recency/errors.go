package recency

import (
	"errors"

	"github.com/wibisana/skimcache/pkg/failure"
)

const (
	// ErrCauseScanAborted marks a listing scan that could not reach the
	// end of the backend's key space. The partial heap content is
	// discarded rather than served.
	ErrCauseScanAborted = "listing scan aborted"

	// ErrCauseScanCancelled marks a scan interrupted by context
	// cancellation between pages.
	ErrCauseScanCancelled = "listing scan cancelled"
)

type IndexError struct {
	Message   string
	Retryable bool
	Cause     string
}

func (e *IndexError) Error() string {
	return e.Message
}

func (e *IndexError) Is(target error) bool {
	var indexErr *IndexError
	if errors.As(target, &indexErr) {
		return indexErr.Cause == e.Cause
	}
	return false
}

func (e *IndexError) IsRetryable() bool {
	return e.Retryable
}

func (e *IndexError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
