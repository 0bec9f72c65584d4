package captcha

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts captcha verdicts.
type Metrics struct {
	Outcome *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "donorprofile_captcha_verifications_total",
			Help: "Captcha verifications by result and first error code",
		}, []string{"result", "error_code"}),
	}
}

// IncrementOutcome records one verdict.
func (m *Metrics) IncrementOutcome(r Result) {
	if m == nil {
		return
	}
	if r.Success {
		m.Outcome.WithLabelValues("success", "").Inc()
		return
	}
	code := ""
	if len(r.ErrorCodes) > 0 {
		code = r.ErrorCodes[0]
	}
	m.Outcome.WithLabelValues("failure", code).Inc()
}
