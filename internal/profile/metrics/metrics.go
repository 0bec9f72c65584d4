package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for upstream profile lookups.
type Metrics struct {
	// Fetch outcomes by result ("full", "partial", "not_found") or error category
	FetchOutcome *prometheus.CounterVec

	// Upstream round-trip latency, split by whether answers were attached
	FetchLatency *prometheus.HistogramVec

	// 1 while the upstream circuit is open
	CircuitOpen prometheus.Gauge
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		FetchOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorprofile_upstream_fetch_total",
			Help: "Upstream profile fetches by outcome",
		}, []string{"outcome"}),

		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donorprofile_upstream_fetch_duration_seconds",
			Help:    "Duration of upstream profile fetches",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"verified"}),

		CircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "donorprofile_upstream_circuit_open",
			Help: "Whether the upstream profile API circuit breaker is open",
		}),
	}
}

// IncrementOutcome records one fetch outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.FetchOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveLatency records an upstream round trip.
func (m *Metrics) ObserveLatency(withAnswers bool, d time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if withAnswers {
		label = "true"
	}
	m.FetchLatency.WithLabelValues(label).Observe(d.Seconds())
}

// SetCircuitOpen mirrors the breaker state.
func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
