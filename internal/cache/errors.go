package cache

import (
	"fmt"

	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseBackendFailure StorageErrorCause = "backend failure"
	ErrCauseCorruptPayload StorageErrorCause = "corrupt payload"
	ErrCauseSealFailure    StorageErrorCause = "seal failed"
)

// StorageError covers both backend I/O failures and payloads that exist
// but cannot be decoded. Callers rely on this being distinct from a
// clean miss: "cached but broken" must never look like "never cached".
type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s", e.Cause)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// mapStorageErrorToMetadataCause maps store-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseBackendFailure:
		return metadata.CauseStorageFailure
	case ErrCauseCorruptPayload:
		return metadata.CauseStorageFailure
	case ErrCauseSealFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
