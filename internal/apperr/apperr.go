// Package apperr defines the error kinds the core's operations raise, per
// the propagation policy in spec §7. Each kind wraps a cause with
// github.com/pkg/errors so callers can branch on kind while still seeing
// the underlying failure in logs.
package apperr

import (
	"github.com/pkg/errors"
)

// Kind is one of the error kinds named in spec §7.
type Kind string

const (
	NotFound         Kind = "not_found"
	Conflict         Kind = "conflict"
	Exhausted        Kind = "exhausted"
	InvalidArgument  Kind = "invalid_argument"
	DeadlineExceeded Kind = "deadline_exceeded"
	Internal         Kind = "internal"
)

// Error pairs a Kind with the wrapped cause.
type Error struct {
	kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.kind)
	}
	return string(e.kind) + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Cause lets github.com/pkg/errors.Cause walk past the kind wrapper.
func (e *Error) Cause() error { return e.cause }

// KindOf reports the error kind: "" for nil, Internal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	if err == nil {
		return ""
	}
	return Internal
}

// Is reports whether err (or any error in its chain) has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func new(kind Kind, msg string, args []any) *Error {
	var cause error
	if len(args) > 0 {
		cause = errors.Errorf(msg, args...)
	} else {
		cause = errors.New(msg)
	}
	return &Error{kind: kind, cause: cause}
}

func NewNotFound(msg string, args ...any) error         { return new(NotFound, msg, args) }
func NewConflict(msg string, args ...any) error         { return new(Conflict, msg, args) }
func NewExhausted(msg string, args ...any) error        { return new(Exhausted, msg, args) }
func NewInvalidArgument(msg string, args ...any) error  { return new(InvalidArgument, msg, args) }
func NewDeadlineExceeded(msg string, args ...any) error { return new(DeadlineExceeded, msg, args) }
func NewInternal(msg string, args ...any) error         { return new(Internal, msg, args) }

// Wrap attaches kind to an existing cause, preserving it in the chain via
// errors.Wrap so errors.Cause(err) still recovers the original error.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{kind: kind, cause: errors.Wrap(cause, msg)}
}
