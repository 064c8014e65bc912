package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// hotspot pipeline.
type Metrics struct {
	SourceRows          *prometheus.CounterVec   // labels: source
	SourceFailures      *prometheus.CounterVec   // labels: source
	SourceFetchDuration *prometheus.HistogramVec // labels: source

	PipelineRuns    *prometheus.CounterVec // labels: outcome={success,error,empty}
	PipelineRunning prometheus.Gauge
	RefreshDuration prometheus.Histogram
	LastRefreshTime prometheus.Gauge

	TrainingDuration    prometheus.Histogram
	TrainingRowsDropped prometheus.Gauge

	SnapshotHotspots prometheus.Gauge
	RecordsExported  prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SourceRows,
		m.SourceFailures,
		m.SourceFetchDuration,
		m.PipelineRuns,
		m.PipelineRunning,
		m.RefreshDuration,
		m.LastRefreshTime,
		m.TrainingDuration,
		m.TrainingRowsDropped,
		m.SnapshotHotspots,
		m.RecordsExported,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// tests can construct pipelines freely without "already registered"
// panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "source_rows_total",
			Help:      "Hotspot rows fetched, by source feed.",
		}, []string{"source"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "source_failures_total",
			Help:      "Feed fetch failures, by source feed.",
		}, []string{"source"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "source_fetch_duration_seconds",
			Help:      "Feed fetch duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "pipeline_runs_total",
			Help:      "Completed refresh cycles by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hotspot_etl",
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-unify-score cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastRefreshTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hotspot_etl",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		TrainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "training_duration_seconds",
			Help:      "Duration of model training on the 7-day window.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		TrainingRowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hotspot_etl",
			Name:      "training_rows_dropped",
			Help:      "Rows excluded from the last fit for null features.",
		}),
		SnapshotHotspots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hotspot_etl",
			Name:      "snapshot_hotspots",
			Help:      "Hotspot count in the latest scored snapshot.",
		}),
		RecordsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "records_exported_total",
			Help:      "Scored hotspots published to the sink topic.",
		}),
	}
}
