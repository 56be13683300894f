// Package errs defines the domain error kinds returned by services and mapped once at the HTTP boundary.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// Unexpected is a persistence or infrastructure failure. Its cause is logged, never returned to clients.
	Unexpected Kind = iota
	NotFound
	Conflict
	Forbidden
	Validation
	// Unauthenticated is a missing or invalid credential.
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Validation:
		return "validation"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unexpected"
	}
}

// Error is a domain error carrying a kind, a client-safe message, optional details and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	// Details are extra client-visible fields, e.g. approvalStatus or per-field validation messages.
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches another *Error with the same kind and message, so sentinels work with errors.Is
// even after WithDetails copies them.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// WithDetails returns a copy of e with the given details merged in.
func (e *Error) WithDetails(details map[string]any) *Error {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		out.Details[k] = v
	}
	for k, v := range details {
		out.Details[k] = v
	}
	return &out
}

// New returns an *Error with the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error that keeps err as its cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, cause: err}
}

// Internal wraps an infrastructure failure with the generic client message.
func Internal(err error) *Error {
	return Wrap(Unexpected, "internal server error", err)
}

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// As returns the first *Error in err's chain. Untyped errors become Internal(err).
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
