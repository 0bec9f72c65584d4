package testutil

import (
	"net/http"

	"donorprofile/pkg/requestcontext"
)

// WithSessionID adds a browser session id to the request context.
// This simulates what the session middleware would do.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	ctx := requestcontext.WithSessionID(req.Context(), sessionID)
	return req.WithContext(ctx)
}

// WithClientMetadata adds the client IP and user agent to the request context.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent)
	return req.WithContext(ctx)
}

// WithVisitor is the typical state for a browser request: a session and a
// client address.
func WithVisitor(req *http.Request, sessionID, clientIP string) *http.Request {
	ctx := requestcontext.WithSessionID(req.Context(), sessionID)
	ctx = requestcontext.WithClientMetadata(ctx, clientIP, req.UserAgent())
	return req.WithContext(ctx)
}
