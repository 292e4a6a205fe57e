package hlcd

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "hlcd"
	subsystem = "search"

	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics are updated once per finished search, never from the hot loop
type Metrics struct {
	Searches           *prometheus.CounterVec
	RecursiveCalls     prometheus.Counter
	CandidatesTested   prometheus.Counter
	CandidatesRejected prometheus.Counter
	Duration           prometheus.Histogram
}

// NewMetrics creates the search metrics and registers them with reg when it
// is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Searches run, by outcome.",
		}, []string{"outcome"}),
		RecursiveCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "recursive_calls_total",
			Help:      "Calls of the backtracking procedure.",
		}),
		CandidatesTested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "candidates_tested_total",
			Help:      "Candidate rows checked against the combination store.",
		}),
		CandidatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "candidates_rejected_total",
			Help:      "Candidate rows producing a codeword below the minimum distance.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of a search.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Searches, m.RecursiveCalls, m.CandidatesTested, m.CandidatesRejected, m.Duration)
	}
	return m
}

func (m *Metrics) observe(r *Result, rejected uint64, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.Searches.WithLabelValues(OutcomeError).Inc()
	case r.Found:
		m.Searches.WithLabelValues(OutcomeFound).Inc()
	default:
		m.Searches.WithLabelValues(OutcomeNotFound).Inc()
	}
	if r == nil {
		return
	}
	m.RecursiveCalls.Add(float64(r.RecursiveCalls))
	m.CandidatesTested.Add(float64(r.CandidatesTested))
	m.CandidatesRejected.Add(float64(rejected))
	m.Duration.Observe(r.Elapsed.Seconds())
}
