package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockfish_analysis_started_total",
		Help: "Analyses started",
	})

	jobsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockfish_analysis_discarded_total",
		Help: "Analyses discarded by their caller",
	})

	jobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blockfish_analysis_running",
		Help: "Analyses whose search has not finished",
	})

	// searchNodes tracks nodes generated per search
	searchNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blockfish_search_nodes",
		Help:    "Nodes generated per search",
		Buckets: prometheus.ExponentialBuckets(16, 4, 8),
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blockfish_search_duration_seconds",
		Help:    "Wall time per search in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	searchOutcome = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockfish_search_outcome_total",
		Help: "Searches by how they stopped",
	}, []string{"outcome"})
)
