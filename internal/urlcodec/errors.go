package urlcodec

import (
	"fmt"

	"github.com/wibisana/skimcache/pkg/failure"
)

type CodecErrorCause string

const (
	ErrCauseMissingSuffix CodecErrorCause = "key lacks storage suffix"
	ErrCauseNotBase64     CodecErrorCause = "not url-safe base64"
)

// CodecError reports a key that cannot possibly be an output of Encode.
// Decode failures are never retryable: the input is wrong, not the
// environment.
type CodecError struct {
	Message string
	Cause   CodecErrorCause
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec error: %s", e.Cause)
}

func (e *CodecError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *CodecError) IsRetryable() bool {
	return false
}
