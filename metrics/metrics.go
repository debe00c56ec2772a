package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts completed pipeline runs by outcome
	// (success, fetch_error, validation_error).
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rankforge",
		Name:      "analyses_total",
		Help:      "Completed analysis runs by outcome.",
	}, []string{"outcome"})

	// DegradedSignals counts analyzer stages that fell back to a heuristic
	// or simulated path.
	DegradedSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rankforge",
		Name:      "degraded_signals_total",
		Help:      "Analyzer stages that produced degraded output, by stage.",
	}, []string{"stage"})

	// AnalysisDuration observes end-to-end pipeline latency.
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rankforge",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end analysis latency.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	})

	// FetchFailures counts page fetch failures by reason.
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rankforge",
		Name:      "fetch_failures_total",
		Help:      "Page fetch failures by classified reason.",
	}, []string{"reason"})
)
