// Package metrics defines the Prometheus instruments exported by the
// pipeline and server. Everything registers on the default registry and is
// served by the HTTP server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRuns counts completed pipeline cycles by outcome ("ok" or
	// "error").
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Completed pipeline cycles by outcome.",
	}, []string{"outcome"})

	// PipelineDuration observes how long a full pipeline cycle takes.
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Duration of a full pipeline cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// GamesAnalyzed counts games that went through the detector set.
	GamesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Subsystem: "pipeline",
		Name:      "games_analyzed_total",
		Help:      "Games run through the detectors.",
	})

	// PicksGenerated counts emitted picks by tier.
	PicksGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Subsystem: "pipeline",
		Name:      "picks_generated_total",
		Help:      "Picks emitted after deduplication, by tier.",
	}, []string{"tier"})

	// PicksDeduplicated counts picks suppressed by the seen cache.
	PicksDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Subsystem: "pipeline",
		Name:      "picks_deduplicated_total",
		Help:      "Picks suppressed because the same side was already emitted.",
	})

	// OddsFetches counts odds provider requests by outcome.
	OddsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Subsystem: "ingest",
		Name:      "odds_fetches_total",
		Help:      "Odds provider fetches by outcome.",
	}, []string{"outcome"})
)
