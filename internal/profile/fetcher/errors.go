package fetcher

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for upstream lookups.
type ErrorCategory string

const (
	// ErrorUpstreamStatus indicates a status other than 200, 206 or 404
	ErrorUpstreamStatus ErrorCategory = "upstream_status"

	// ErrorTransport indicates the request never produced a response
	ErrorTransport ErrorCategory = "transport"

	// ErrorBadData indicates a 200/206 body that could not be decoded
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorCircuitOpen indicates the call was skipped because the breaker is open
	ErrorCircuitOpen ErrorCategory = "circuit_open"

	// ErrorCanceled indicates the caller's context ended before a response;
	// it says nothing about upstream health
	ErrorCanceled ErrorCategory = "canceled"
)

// Error wraps an upstream failure with its category.
type Error struct {
	Category   ErrorCategory
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("profile api [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("profile api [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func newError(category ErrorCategory, status int, message string, underlying error) *Error {
	retryable := category == ErrorTransport || category == ErrorCircuitOpen ||
		(category == ErrorUpstreamStatus && status >= 500)
	return &Error{
		Category:   category,
		StatusCode: status,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether err is a transient upstream failure.
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// GetCategory extracts the category, or "" for errors not produced here.
func GetCategory(err error) ErrorCategory {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ""
}
