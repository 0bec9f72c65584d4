// Package httputil writes JSON responses and decodes validated request bodies.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "donorprofile/pkg/domain-errors"
)

// MaxBodyBytes caps decoded request bodies.
const MaxBodyBytes = 64 << 10

// Validatable is implemented by request types that normalize and check
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// ErrorResponse is the body written by WriteError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and writes an ErrorResponse. Internal
// errors never expose their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		message = de.Message
	}
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = message
	}
	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeAndPrepare decodes the JSON body into a new T and runs Validate.
// On failure it writes the error response, logs it, and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			err = dErrors.New(dErrors.CodeBadRequest, "request body is required")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
		}
		logger.WarnContext(ctx, "invalid request body", "request_id", requestID, "error", err)
		WriteError(w, err)
		return nil, false
	}

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed", "request_id", requestID, "error", err)
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
