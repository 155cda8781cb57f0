// Package metrics provides observability for the ingestion pipeline using
// Prometheus metrics: per-source record and failure counters, load and
// recompute durations, and dataset size gauges. The gateway exposes them
// on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsIngested tracks records ingested per source adapter.
	// Labels: source (adapter name), kind (orders/inventory/catalog)
	RecordsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainsight_records_ingested_total",
			Help: "Total number of records ingested",
		},
		[]string{"source", "kind"},
	)

	// SourceFailures tracks per-source extraction failures.
	// Labels: source (adapter name), reason (error type)
	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainsight_source_failures_total",
			Help: "Total number of source extraction failures",
		},
		[]string{"source", "reason"},
	)

	// LoadDuration tracks full pipeline load duration in seconds.
	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainsight_load_duration_seconds",
			Help:    "Duration of full pipeline loads",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RecomputeDuration tracks filter-to-KPI recompute passes in seconds.
	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainsight_recompute_duration_seconds",
			Help:    "Duration of filter/KPI recompute passes",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// DatasetRecords reports the size of the loaded dataset.
	// Labels: kind (orders/inventory/catalog)
	DatasetRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainsight_dataset_records",
			Help: "Records in the currently loaded dataset",
		},
		[]string{"kind"},
	)
)

// Timer measures one operation's duration for histogram observation.
type Timer struct {
	start time.Time
	hist  prometheus.Histogram
}

// NewTimer starts a timer against the given histogram.
func NewTimer(hist prometheus.Histogram) *Timer {
	return &Timer{start: time.Now(), hist: hist}
}

// Stop observes the elapsed duration and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.hist.Observe(elapsed.Seconds())
	return elapsed
}
