package contracts

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, caller-visible category of a failure
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindStorage           ErrorKind = "storage"
	KindNotFound          ErrorKind = "not_found"
	KindTimeout           ErrorKind = "computation_timeout"
	KindMalformedOutput   ErrorKind = "malformed_output"
	KindComputationFailed ErrorKind = "computation_failed"
)

// Error is the single error type surfaced by stores, the computation adapter
// and the workflows built on them.
type Error struct {
	Kind    ErrorKind
	Message string
	// Output is the raw computation output, kept for diagnostics only.
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, so errors.Is(err, ErrNotFound) works for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrTimeout           = &Error{Kind: KindTimeout}
	ErrMalformedOutput   = &Error{Kind: KindMalformedOutput}
	ErrComputationFailed = &Error{Kind: KindComputationFailed}
)

func ValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func StorageError(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

func NotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func TimeoutError(message string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Err: err}
}

func MalformedOutputError(message, output string, err error) *Error {
	return &Error{Kind: KindMalformedOutput, Message: message, Output: output, Err: err}
}

func ComputationFailedError(message, output string) *Error {
	return &Error{Kind: KindComputationFailed, Message: message, Output: output}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the caller-facing message; causes are not exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// IsComputation reports whether err came from the external computation
func IsComputation(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindMalformedOutput, KindComputationFailed:
		return true
	}
	return false
}
