package pagerank

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// Metrics bundles the prometheus collectors updated by an Engine.
type Metrics struct {
	runs      *prometheus.CounterVec
	rounds    prometheus.Counter
	lastError prometheus.Gauge
}

// NewMetrics creates the engine collectors and registers them with reg. A
// nil reg leaves the collectors unregistered, which is handy for tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fxpagerank",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "The number of engine runs partitioned by outcome",
		}, []string{"outcome"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fxpagerank",
			Subsystem: "engine",
			Name:      "rounds_total",
			Help:      "The number of message-passing rounds executed",
		}),
		lastError: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fxpagerank",
			Subsystem: "engine",
			Name:      "last_round_l1_error",
			Help:      "The L1 distance between the two most recently committed rows",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, col := range []prometheus.Collector{m.runs, m.rounds, m.lastError} {
		if err := reg.Register(col); err != nil {
			return nil, xerrors.Errorf("register engine metrics: %w", err)
		}
	}
	return m, nil
}

// Runs returns the run counter for the given outcome ("converged",
// "diverged" or "failed").
func (m *Metrics) Runs(outcome string) prometheus.Counter {
	return m.runs.WithLabelValues(outcome)
}

// Rounds returns the round counter.
func (m *Metrics) Rounds() prometheus.Counter { return m.rounds }

// LastError returns the gauge tracking the latest L1 error.
func (m *Metrics) LastError() prometheus.Gauge { return m.lastError }

func (m *Metrics) observeRound(l1 float64) {
	if m == nil {
		return
	}
	m.rounds.Inc()
	m.lastError.Set(l1)
}

func (m *Metrics) observeRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}
