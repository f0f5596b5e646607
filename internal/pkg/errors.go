package pkg

import (
	"errors"
	"fmt"
)

// Kind is the machine readable class of a core failure.
type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindNotFound         Kind = "not_found"
	KindValidationFailed Kind = "validation_failed"
	KindConflict         Kind = "conflict"
	KindForbidden        Kind = "forbidden"
	KindTransportFailure Kind = "transport_failure"
)

// AppError carries a Kind plus a human readable message. Err is the cause, if any.
type AppError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any *AppError of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

// sentinels for errors.Is
var (
	ErrUnauthenticated  = &AppError{Kind: KindUnauthenticated}
	ErrNotFound         = &AppError{Kind: KindNotFound}
	ErrValidationFailed = &AppError{Kind: KindValidationFailed}
	ErrConflict         = &AppError{Kind: KindConflict}
	ErrForbidden        = &AppError{Kind: KindForbidden}
	ErrTransportFailure = &AppError{Kind: KindTransportFailure}
)

func Unauthenticated(msg string) error { return &AppError{Kind: KindUnauthenticated, Msg: msg} }

func NotFound(msg string) error { return &AppError{Kind: KindNotFound, Msg: msg} }

func Invalid(msg string) error { return &AppError{Kind: KindValidationFailed, Msg: msg} }

func Forbidden(msg string) error { return &AppError{Kind: KindForbidden, Msg: msg} }

func Conflict(msg string, err error) error {
	return &AppError{Kind: KindConflict, Msg: msg, Err: err}
}

// Transport wraps a store or network error. An *AppError passes through untouched.
func Transport(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return err
	}
	return &AppError{Kind: KindTransportFailure, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or "" for nil and transport failure for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransportFailure
}

// Message returns the human readable part of err.
func Message(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
