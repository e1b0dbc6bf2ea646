package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// KindValidation is malformed input rejected before it reaches core logic.
	KindValidation Kind = iota
	// KindNotFound is a missing product, order or cart item.
	KindNotFound
	// KindBusinessRule is a well-formed request that violates a domain rule,
	// e.g. an illegal order-status transition.
	KindBusinessRule
	// KindInternal is an unexpected or transport failure.
	KindInternal
)

// Error carries a kind alongside the message so the transport layer can map it
// to a status code without string matching.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
