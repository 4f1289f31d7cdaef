package summarize

import (
	"errors"

	"github.com/wibisana/skimcache/pkg/failure"
)

const (
	// ErrCauseModelFailure marks a generation call that the model
	// backend rejected or that failed in transit.
	ErrCauseModelFailure = "model call failed"

	// ErrCauseEmptyResponse marks a generation call that succeeded on
	// the wire but carried no usable text.
	ErrCauseEmptyResponse = "model returned empty response"
)

type SummarizeError struct {
	Message   string
	Retryable bool
	Cause     string
}

func (e *SummarizeError) Error() string {
	return e.Message
}

func (e *SummarizeError) Is(target error) bool {
	var summarizeErr *SummarizeError
	if errors.As(target, &summarizeErr) {
		return summarizeErr.Cause == e.Cause
	}
	return false
}

func (e *SummarizeError) IsRetryable() bool {
	return e.Retryable
}

func (e *SummarizeError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
