package blob

import (
	"fmt"

	"github.com/wibisana/skimcache/pkg/failure"
)

type BlobErrorCause string

const (
	ErrCauseWriteFailure BlobErrorCause = "backend write failed"
	ErrCauseReadFailure  BlobErrorCause = "backend read failed"
	ErrCauseStatFailure  BlobErrorCause = "backend stat failed"
	ErrCauseListFailure  BlobErrorCause = "backend listing failed"
)

type BlobError struct {
	Message   string
	Retryable bool
	Cause     BlobErrorCause
}

func (e *BlobError) Error() string {
	return fmt.Sprintf("blob error: %s", e.Cause)
}

func (e *BlobError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *BlobError) IsRetryable() bool {
	return e.Retryable
}
