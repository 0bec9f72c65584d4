package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the gating flow.
type Metrics struct {
	// Final phase of each Load/Submit, with the failure kind if any
	Outcome *prometheus.CounterVec

	// Upstream outages hidden behind NotFound or Mismatch
	TransientFailures *prometheus.CounterVec

	// Auto-reverify attempts by result
	AutoVerify *prometheus.CounterVec

	// End-to-end duration of Load/Submit
	Duration *prometheus.HistogramVec
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorprofile_gate_outcomes_total",
			Help: "Gating outcomes by operation, final phase and failure kind",
		}, []string{"operation", "phase", "failure"}),

		TransientFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorprofile_gate_transient_failures_total",
			Help: "Upstream failures collapsed into not-found or mismatch outcomes",
		}, []string{"operation"}),

		AutoVerify: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorprofile_gate_auto_verify_total",
			Help: "Silent re-verification attempts with cached answers by result",
		}, []string{"result"}),

		Duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donorprofile_gate_duration_seconds",
			Help:    "Duration of gating operations including upstream calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
}

// IncrementOutcome records the final phase of an operation.
func (m *Metrics) IncrementOutcome(operation, phase, failure string) {
	if m != nil {
		m.Outcome.WithLabelValues(operation, phase, failure).Inc()
	}
}

// IncrementTransient records a hidden upstream failure.
func (m *Metrics) IncrementTransient(operation string) {
	if m != nil {
		m.TransientFailures.WithLabelValues(operation).Inc()
	}
}

// IncrementAutoVerify records an auto-reverify result ("display" or "fallback").
func (m *Metrics) IncrementAutoVerify(result string) {
	if m != nil {
		m.AutoVerify.WithLabelValues(result).Inc()
	}
}

// ObserveDuration records how long an operation took.
func (m *Metrics) ObserveDuration(operation string, d time.Duration) {
	if m != nil {
		m.Duration.WithLabelValues(operation).Observe(d.Seconds())
	}
}
