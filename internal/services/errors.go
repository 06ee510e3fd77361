package services

// Upstream provider failure kinds. Auth and rate-limit failures are
// surfaced immediately and never retried inside a pipeline.
type UpstreamErrorKind string

const (
	UpstreamAuthInvalid UpstreamErrorKind = "auth_invalid"
	UpstreamRateLimited UpstreamErrorKind = "rate_limited"
	UpstreamUnavailable UpstreamErrorKind = "unavailable"
	UpstreamUnknown     UpstreamErrorKind = "unknown"
)

// UpstreamError wraps a failure signaled by the model provider.
type UpstreamError struct {
	Kind    UpstreamErrorKind
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PreconditionError means the request referenced a video or transcript in
// the wrong state; it is raised before any model call.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// NotFoundError means the referenced video does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ParseError means the model response matched no accepted shape, or matched
// but failed the item-count/field thresholds. Pipelines fail closed on it:
// nothing partial is persisted.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}
