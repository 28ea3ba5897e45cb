// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog
	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_catalog_books",
			Help: "Number of complete books loaded into the catalog",
		},
	)

	CatalogRowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_catalog_rows_dropped_total",
			Help: "Source rows dropped for missing fields or duplicate ids",
		},
	)

	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_index_build_duration_seconds",
			Help:    "Time spent building a similarity index",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"index"}, // "description", "genres"
	)

	// Queries
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_title_resolutions_total",
			Help: "Title resolutions by outcome",
		},
		[]string{"outcome"}, // "found", "not_found", "ambiguous", "malformed_query"
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recommendations_total",
			Help: "Recommendation requests by mode and result",
		},
		[]string{"mode", "result"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_recommend_duration_seconds",
			Help:    "Latency of recommendation ranking",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"mode"},
	)

	// Covers
	CoverFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_cover_fetches_total",
			Help: "Cover image fetches by result",
		},
		[]string{"result"}, // "ok", "network", "decode", "circuit_open"
	)

	CoverCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_cover_cache_hits_total",
			Help: "Cover images served from the decoded-image cache",
		},
	)

	CoverCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_cover_cache_misses_total",
			Help: "Cover images not found in the decoded-image cache",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// ObserveIndexBuild records how long building the named index took.
func ObserveIndexBuild(index string, start time.Time) {
	IndexBuildDuration.WithLabelValues(index).Observe(time.Since(start).Seconds())
}

// RecordRecommendation counts one request and its latency.
func RecordRecommendation(mode, result string, start time.Time) {
	Recommendations.WithLabelValues(mode, result).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
