package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// pass results
const (
	passCommitted = "committed"
	passUnchanged = "unchanged"
	passFailed    = "failed"
)

// Metrics sync engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	passes           *prometheus.CounterVec
	stepRuns         *prometheus.CounterVec
	passDuration     prometheus.Histogram
	replays          prometheus.Counter
	tiebreakFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventsync_passes_total",
			Help: "Sync passes by outcome.",
		}, []string{"result"}),
		stepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventsync_step_runs_total",
			Help: "Step executions by step name and outcome.",
		}, []string{"step", "result"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventsync_pass_duration_seconds",
			Help:    "Wall time of one sync pass including commit.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventsync_replays_total",
			Help: "Committed match replays.",
		}),
		tiebreakFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventsync_tiebreak_failures_total",
			Help: "Playoff tiebreak resolutions that failed and left the winner unset.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.passes, m.stepRuns, m.passDuration, m.replays, m.tiebreakFailures)
	}
	return m
}

func (m *Metrics) observePass(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(result).Inc()
	m.passDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeStep(step string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stepRuns.WithLabelValues(step, result).Inc()
}

func (m *Metrics) addReplays(n int) {
	if m == nil || n == 0 {
		return
	}
	m.replays.Add(float64(n))
}

func (m *Metrics) addTiebreakFailures(n int) {
	if m == nil || n == 0 {
		return
	}
	m.tiebreakFailures.Add(float64(n))
}
