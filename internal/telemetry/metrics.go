// Package telemetry holds the process-wide prometheus instruments.
// Instruments live on the default registry; the HTTP server exposes
// them on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts index searches by outcome ("ok" or "error").
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cybersyn",
		Subsystem: "index",
		Name:      "searches_total",
		Help:      "Index searches by outcome.",
	}, []string{"outcome"})

	// SearchDuration observes per-query search latency.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cybersyn",
		Subsystem: "index",
		Name:      "search_duration_seconds",
		Help:      "Index search latency.",
		Buckets:   prometheus.DefBuckets,
	})

	// ChunksIndexed counts transcript chunks written to the index.
	ChunksIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cybersyn",
		Subsystem: "index",
		Name:      "chunks_indexed_total",
		Help:      "Transcript chunks written to the index.",
	})

	// GenerationsTotal counts model calls by outcome.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cybersyn",
		Subsystem: "llm",
		Name:      "generations_total",
		Help:      "Model completion calls by outcome.",
	}, []string{"outcome"})

	// GenerationDuration observes model call latency.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cybersyn",
		Subsystem: "llm",
		Name:      "generation_duration_seconds",
		Help:      "Model completion latency.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	})

	// ResearchTurnsTotal counts research turns by outcome.
	ResearchTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cybersyn",
		Subsystem: "research",
		Name:      "turns_total",
		Help:      "Research turns by outcome.",
	}, []string{"outcome"})

	// ResearchBatches observes how many generation batches a turn needed.
	ResearchBatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cybersyn",
		Subsystem: "research",
		Name:      "batches_per_turn",
		Help:      "Generation batches per research turn.",
		Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
	})
)

// Outcome maps an error to its metric label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
