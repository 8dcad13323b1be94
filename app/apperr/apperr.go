package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the transport layer can pick a status code.
type Kind string

const (
	KindUnknown            Kind = ""
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindPreconditionFailed Kind = "precondition_failed"
	KindInvalidState       Kind = "invalid_state"
	KindConflict           Kind = "conflict"
	KindInvalid            Kind = "invalid"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func NotFound(op, format string, args ...interface{}) *Error {
	return newf(KindNotFound, op, format, args...)
}

func Forbidden(op, format string, args ...interface{}) *Error {
	return newf(KindForbidden, op, format, args...)
}

func PreconditionFailed(op, format string, args ...interface{}) *Error {
	return newf(KindPreconditionFailed, op, format, args...)
}

func InvalidState(op, format string, args ...interface{}) *Error {
	return newf(KindInvalidState, op, format, args...)
}

func Conflict(op, format string, args ...interface{}) *Error {
	return newf(KindConflict, op, format, args...)
}

func Invalid(op, format string, args ...interface{}) *Error {
	return newf(KindInvalid, op, format, args...)
}

// KindOf returns the kind of the first *Error in the chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
