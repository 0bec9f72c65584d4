package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	PanicsRecovered prometheus.Counter
	RateLimited     *prometheus.CounterVec
}

// New creates and registers all HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donorprofile_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),

		PanicsRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorprofile_http_panics_recovered_total",
			Help: "Handler panics caught by the recovery middleware",
		}),

		RateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorprofile_http_rate_limited_total",
			Help: "Requests rejected by the verification rate limiter",
		}, []string{"route"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
	}
}

// IncrementPanics counts a recovered panic.
func (m *Metrics) IncrementPanics() {
	if m != nil {
		m.PanicsRecovered.Inc()
	}
}

// IncrementRateLimited counts a rejected request.
func (m *Metrics) IncrementRateLimited(route string) {
	if m != nil {
		m.RateLimited.WithLabelValues(route).Inc()
	}
}
