// Package middleware applies per-IP request limits to verification submits.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"donorprofile/internal/platform/metrics"
	"donorprofile/internal/ratelimit/models"
	"donorprofile/pkg/platform/httputil"
	"donorprofile/pkg/requestcontext"
)

// BucketStore counts requests per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Middleware enforces a sliding-window limit per client IP.
type Middleware struct {
	store   BucketStore
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// New builds a limiter allowing limit requests per window. A limit of zero
// disables limiting.
func New(store BucketStore, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if limit <= 0 {
		logger.Info("verification rate limiting disabled")
	}
	return m
}

// RateLimit guards routes in the named class, e.g. "verify".
func (m *Middleware) RateLimit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, err := m.store.Allow(ctx, class+":ip:"+ip, m.limit, m.window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit", "error", err, "class", class)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementRateLimited(class)
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
					"retry_after", result.RetryAfter,
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Bạn đã thử quá nhiều lần. Vui lòng thử lại sau.",
		RetryAfter: result.RetryAfter,
	})
}
