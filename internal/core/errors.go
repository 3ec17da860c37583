package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies conversion failures.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindSchemaMismatch  ErrorKind = "schema_mismatch"
	KindIO              ErrorKind = "io_failure"
	KindStore           ErrorKind = "store_failure"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrIO              = errors.New("io failure")
	ErrStore           = errors.New("store failure")
)

// Error wraps a failure with its kind and the operation that produced it.
type Error struct {
	Kind ErrorKind
	Op   string // e.g. "csv import"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindSchemaMismatch:
		return ErrSchemaMismatch
	case KindIO:
		return ErrIO
	case KindStore:
		return ErrStore
	default:
		return nil
	}
}

// NewError creates a new conversion error.
func NewError(kind ErrorKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func invalidArgument(op, format string, args ...any) *Error {
	return NewError(KindInvalidArgument, op, fmt.Sprintf(format, args...), nil)
}

func ioFailure(op, msg string, err error) *Error {
	return NewError(KindIO, op, msg, err)
}

func storeFailure(op, msg string, err error) *Error {
	return NewError(KindStore, op, msg, err)
}

// KindFromError maps an error to its kind. Untyped errors report "".
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
