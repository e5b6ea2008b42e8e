// Package apierr defines the domain error kinds shared by the stores, the
// fleet registry, the assignment engine and the dispatcher, plus Translate,
// which maps any error to a (kind, message) pair.
package apierr

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds from the dispatcher's error handling design.
type Kind string

const (
	KindAuthError       Kind = "AuthError"
	KindNotFound        Kind = "NotFound"
	KindConflict        Kind = "Conflict"
	KindUnavailable     Kind = "Unavailable"
	KindInvalidArgument Kind = "InvalidArgument"
	KindInternal        Kind = "Internal"
)

// Sentinel errors usable with errors.Is. Domain code should wrap one of
// these with fmt.Errorf("%w: detail", apierr.ErrNotFound) rather than
// constructing a *Error by hand, except where a custom message is required.
var (
	ErrAuthError       = errors.New("auth error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("unavailable")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
)

// Error is a domain error carrying an explicit Kind and a human-readable
// message suitable for returning directly in an RPC response.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindAuthError:
		return ErrAuthError
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindUnavailable:
		return ErrUnavailable
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return ErrInternal
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func AuthError(message string) *Error       { return New(KindAuthError, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func Unavailable(message string) *Error     { return New(KindUnavailable, message) }
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }
func Internal(message string) *Error        { return New(KindInternal, message) }

// Translate maps any error to an RPC-ready (success=false, message) pair.
// Domain errors keep their message verbatim; anything else (including a
// recovered panic) is sanitised into a generic Internal message so stack
// details never leak onto the wire.
func Translate(err error) (Kind, string) {
	if err == nil {
		return "", ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, de.Message
	}
	return KindInternal, "internal error"
}
