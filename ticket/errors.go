package ticket

import "errors"

// Kind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions. Callers
// (typically the routing layer mapping errors to responses) should branch on
// Kind rather than matching error strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindNotFound: the series, event or ticket does not exist.
	KindNotFound Kind = "NotFound"
	// KindValidation: malformed input, e.g. a ticket-count mismatch at
	// creation.
	KindValidation Kind = "Validation"
	// KindExhausted: every edition of the series is already claimed.
	KindExhausted Kind = "Exhausted"
	// KindCorrupt: expected metadata is missing or unparseable.
	KindCorrupt Kind = "Corrupt"
	// KindUnavailable: the store spent its retry budget.
	KindUnavailable Kind = "Unavailable"
	// KindVerifyFailed: a post-write read-back did not confirm the write.
	KindVerifyFailed Kind = "VerifyFailed"
)

// Error is the package's structured error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, cause error) error {
	if cause == nil {
		return newError(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
