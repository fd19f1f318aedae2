package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is
// valid everywhere and records nothing, so hosting layers that don't scrape
// can skip the wiring entirely.
type Metrics struct {
	turnsTotal   *prometheus.CounterVec
	turnDuration prometheus.Histogram
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the pipeline collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "turns_total",
			Help:      "Turns handled, by intent and execution status.",
		}, []string{"intent", "status"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "assistant",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "steps_total",
			Help:      "Plan steps executed, by provider, action and outcome.",
		}, []string{"provider", "action", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "assistant",
			Name:      "step_duration_seconds",
			Help:      "Per-step capability invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	if reg != nil {
		reg.MustRegister(m.turnsTotal, m.turnDuration, m.stepsTotal, m.stepDuration)
	}
	return m
}

// ObserveTurn records one completed turn.
func (m *Metrics) ObserveTurn(intent Intent, status ExecStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(string(intent), string(status)).Inc()
	m.turnDuration.Observe(elapsed.Seconds())
}

// ObserveClassificationFailure records a turn that never reached planning.
func (m *Metrics) ObserveClassificationFailure() {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues("unknown", "classification_error").Inc()
}

// ObserveStep records one step invocation.
func (m *Metrics) ObserveStep(provider, action string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.stepsTotal.WithLabelValues(provider, action, outcome).Inc()
	m.stepDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
