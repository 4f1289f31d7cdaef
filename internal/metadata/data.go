package metadata

/*
Metadata Collected
- Request outcomes and latencies
- Storage operation sizes and durations
- Listing scan statistics
- Summarization call durations

Logging Goals
- Debuggable request behavior
- Post-incident auditability
- Failure diagnostics

Structured, write-only recording is preferred.

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors recorded here never change a handler's response
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence request handling.
*/

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	// CauseUnknown: the failure does not map cleanly to any known
	// category; safe fallback.
	CauseUnknown ErrorCause = iota
	// CauseNetworkFailure: transport-level failure reaching a remote
	// collaborator (backend bucket, origin page, model API).
	CauseNetworkFailure
	// CauseStorageFailure: the object store rejected or failed an
	// operation, or a stored payload could not be decoded.
	CauseStorageFailure
	// CauseCodecFailure: a storage key could not be reversed into a URL,
	// or a URL failed validation.
	CauseCodecFailure
	// CauseModelFailure: the summarization backend returned an error or
	// unusable output.
	CauseModelFailure
	// CauseRetryFailure: all retry attempts for an operation were
	// exhausted.
	CauseRetryFailure
	// CauseContentFailure: a fetched page could not be reduced to
	// readable content.
	CauseContentFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseCodecFailure:
		return "codec_failure"
	case CauseModelFailure:
		return "model_failure"
	case CauseRetryFailure:
		return "retry_failure"
	case CauseContentFailure:
		return "content_failure"
	default:
		return "unknown"
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrKey         AttributeKey = "key"
	AttrBucket      AttributeKey = "bucket"
	AttrRequestID   AttributeKey = "request_id"
	AttrContentHash AttributeKey = "content_hash"
	AttrMessage     AttributeKey = "message"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, value string) Attribute {
	return Attribute{Key: key, Value: value}
}
