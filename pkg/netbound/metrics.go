package netbound

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Prometheus-backed Observer.
//
// All metrics use the netbound_ prefix. A nil *Metrics is safe to use and
// records nothing.
type Metrics struct {
	// InvocationsTotal counts invocations by branch taken
	InvocationsTotal *prometheus.CounterVec

	// StatesTotal counts emitted states by status and error kind
	StatesTotal *prometheus.CounterVec

	// NetworkDuration tracks network call latency by outcome
	NetworkDuration *prometheus.HistogramVec

	// SilentCompletionsTotal counts network successes that emitted no terminal state
	SilentCompletionsTotal prometheus.Counter

	// CancellationsTotal counts invocations stopped by their context
	CancellationsTotal prometheus.Counter
}

// NewMetrics creates loader metrics and registers them on reg.
// Panics if registration fails (expected during initialization only).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netbound_invocations_total",
				Help: "Total resource loader invocations by path",
			},
			[]string{"path"},
		),
		StatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netbound_states_total",
				Help: "Total emitted resource states by status and error kind",
			},
			[]string{"status", "kind"},
		),
		NetworkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netbound_network_duration_seconds",
				Help:    "Network call duration in seconds by outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		SilentCompletionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "netbound_silent_completions_total",
				Help: "Network successes that completed without a terminal state",
			},
		),
		CancellationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "netbound_cancellations_total",
				Help: "Invocations stopped by context cancellation",
			},
		),
	}

	reg.MustRegister(
		m.InvocationsTotal,
		m.StatesTotal,
		m.NetworkDuration,
		m.SilentCompletionsTotal,
		m.CancellationsTotal,
	)

	return m
}

func (m *Metrics) InvocationStarted(path Path) {
	if m == nil {
		return
	}
	m.InvocationsTotal.WithLabelValues(string(path)).Inc()
}

func (m *Metrics) NetworkCompleted(kind OutcomeKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.NetworkDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}

func (m *Metrics) StateEmitted(status Status, kind ErrorKind) {
	if m == nil {
		return
	}
	m.StatesTotal.WithLabelValues(status.String(), kind.String()).Inc()
}

func (m *Metrics) SilentCompletion() {
	if m == nil {
		return
	}
	m.SilentCompletionsTotal.Inc()
}

func (m *Metrics) Cancelled() {
	if m == nil {
		return
	}
	m.CancellationsTotal.Inc()
}
