// Package metrics holds the Prometheus collectors shared by the intake services.
// They register with the default registry, exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HistoryMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_history_mutations_total",
		Help: "History mutations by operation",
	}, []string{"op"})

	HistorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intake_history_records",
		Help: "Number of records in the diagnosis history after the last load",
	})

	HistoryQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intake_history_query_duration_seconds",
		Help:    "Duration of history aggregation queries",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"query"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_history_exports_total",
		Help: "History exports by format",
	}, []string{"format"})

	ArchiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_archive_failures_total",
		Help: "Exports that could not be copied to object storage",
	})

	RecognitionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_recognition_requests_total",
		Help: "Calls to the recognition service by outcome",
	}, []string{"outcome"})

	DictionaryProgress = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_dictionary_progress_updates_total",
		Help: "Learning progress changes by action",
	}, []string{"action"})
)

// Recognition outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNoResult = "no_result"
	OutcomeFailure  = "failure"
)
