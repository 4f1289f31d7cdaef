package readable

import (
	"fmt"

	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseNotHTML           ExtractionErrorCause = "input is not HTML"
	ErrCauseNoContent         ExtractionErrorCause = "no meaningful content"
	ErrCauseConversionFailure ExtractionErrorCause = "markdown conversion failed"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("readable error: %s", e.Cause)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ExtractionError) IsRetryable() bool {
	return e.Retryable
}

// mapExtractionErrorToMetadataCause maps extraction-local error
// semantics to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseNoContent, ErrCauseConversionFailure:
		return metadata.CauseContentFailure
	default:
		return metadata.CauseUnknown
	}
}
