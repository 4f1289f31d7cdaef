package failure

type Severity int

// request handling control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by every package in this
// module. A classified error carries enough information for the caller
// to decide between aborting the request and degrading gracefully,
// without inspecting package-local error internals.
type ClassifiedError interface {
	error
	Severity() Severity
}
