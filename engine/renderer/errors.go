// Package renderer holds the error taxonomy shared by the image compositor,
// the document paginator and the preview rasteriser.
package renderer

import (
	"context"
	"errors"
)

// Kind classifies a render failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindRender     Kind = "render"
	KindTimeout    Kind = "timeout"
	KindResource   Kind = "resource"
	KindCanceled   Kind = "canceled"
)

// Error wraps a render failure with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
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

// NewError creates a new render error.
func NewError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Validation reports a malformed or missing request field.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// KindOf returns the kind of err. Context errors map to timeout and canceled
// even when they are wrapped in a render error of another kind; anything
// unrecognised is a render failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var renderErr *Error
	if errors.As(err, &renderErr) && renderErr.Kind != "" {
		return renderErr.Kind
	}
	return KindRender
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var renderErr *Error
	return errors.As(err, &renderErr) && renderErr.Kind == KindValidation
}
