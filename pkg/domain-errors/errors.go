// Package domainerrors carries coded errors from services to the transport layer.
//
// Services return these (optionally wrapping an underlying cause) and handlers
// translate the code into an HTTP status via pkg/platform/httputil.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeBadRequest      Code = "bad_request"
	CodeValidation      Code = "validation_error"
	CodeInvalidInput    Code = "invalid_input"
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeTooManyRequests Code = "rate_limit_exceeded"
	CodeTimeout         Code = "timeout"
	CodeUnavailable     Code = "service_unavailable"
	CodeInternal        Code = "internal_error"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// As extracts the outermost coded error from the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is an alias of HasCode that reads better at call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
