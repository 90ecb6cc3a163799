package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/parley/pkg/dialogue"
)

// Metrics records dispatch outcomes as Prometheus collectors. It implements
// dialogue.Observer; attach it with dialogue.WithObserver.
type Metrics struct {
	dispatches *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them on the given registerer
// (use prometheus.DefaultRegisterer for the process default).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_dispatches_total",
				Help: "Total number of dispatch calls by selected state and outcome",
			},
			[]string{"state", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "parley_dispatch_duration_seconds",
				Help: "Duration of dispatch calls including handler execution",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.dispatches, m.latency)
	return m
}

// Dispatches exposes the dispatch counter, mainly for tests and custom
// collection.
func (m *Metrics) Dispatches() *prometheus.CounterVec {
	return m.dispatches
}

// ObserveDispatch implements dialogue.Observer.
// The fallback outcome has no state name; it is recorded under "(default)".
func (m *Metrics) ObserveDispatch(state string, outcome dialogue.Outcome, elapsed time.Duration) {
	if state == "" {
		state = "(default)"
	}
	m.dispatches.WithLabelValues(state, string(outcome)).Inc()
	m.latency.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}
