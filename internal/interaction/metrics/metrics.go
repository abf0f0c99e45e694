package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for interaction dispatch.
type Metrics struct {
	// Dispatch outcomes by interaction kind.
	Dispatches *prometheus.CounterVec

	// Staff-gate denials by action kind.
	GateDenials *prometheus.CounterVec

	// End-to-end handler latency by interaction kind.
	DispatchLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all interaction metrics registered.
func New() *Metrics {
	return &Metrics{
		Dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketdesk_interaction_dispatches_total",
			Help: "Total dispatched interactions by kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: "ok", "error", "denied", "unknown"

		GateDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketdesk_interaction_gate_denials_total",
			Help: "Staff-only gate denials by action kind",
		}, []string{"action"}),

		DispatchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ticketdesk_interaction_dispatch_duration_seconds",
			Help:    "Duration of interaction dispatch including handler work",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
	}
}

// IncrementDispatch records one dispatch outcome.
func (m *Metrics) IncrementDispatch(kind, outcome string) {
	if m != nil {
		m.Dispatches.WithLabelValues(kind, outcome).Inc()
	}
}

// IncrementGateDenial records a staff-gate rejection.
func (m *Metrics) IncrementGateDenial(action string) {
	if m != nil {
		m.GateDenials.WithLabelValues(action).Inc()
	}
}

// ObserveDispatchLatency records the total dispatch duration.
func (m *Metrics) ObserveDispatchLatency(kind string, d time.Duration) {
	if m != nil {
		m.DispatchLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}
