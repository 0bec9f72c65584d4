// Package requesttime pins one "now" per request so every component that
// stamps or compares times during a request agrees on it.
package requesttime

import (
	"net/http"
	"time"

	"donorprofile/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithClock(time.Now)(next)
}

// MiddlewareWithClock is Middleware with an injected clock.
func MiddlewareWithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
