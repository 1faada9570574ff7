package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the QC
// pipeline.
type Metrics struct {
	ProfilesConsumed prometheus.Counter
	ResultsProduced  prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Quality-control metrics.
	ProfilesRejected prometheus.Counter
	DetectorHits     *prometheus.CounterVec // labels: detector={statistical_outlier,spike,gradient,density_inversion}
	ProfileQuality   *prometheus.CounterVec // labels: quality={excellent,good,acceptable,poor,unusable}
	StoreEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProfilesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "profiles_consumed_total",
			Help:      "Total raw profiles read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "results_produced_total",
			Help:      "Total QC results written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "transform_errors_total",
			Help:      "Total profiles dropped because parsing or QC failed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argo_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_etl",
			Name:      "batch_size",
			Help:      "Number of profiles per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ProfilesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "profiles_rejected_total",
			Help:      "Profiles that failed structural validation and were classified unusable.",
		}),
		DetectorHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "detector_hits_total",
			Help:      "Flagged measurements by QC detector.",
		}, []string{"detector"}),
		ProfileQuality: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "profile_quality_total",
			Help:      "Processed profiles by overall quality category.",
		}, []string{"quality"}),
		StoreEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argo_etl",
			Name:      "store_enabled",
			Help:      "1 when the database store is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ProfilesConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ProfilesRejected,
		m.DetectorHits,
		m.ProfileQuality,
		m.StoreEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ProfilesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "argo_etl", Name: "profiles_consumed_total"}),
		ResultsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "argo_etl", Name: "results_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "argo_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "argo_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "argo_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "argo_etl", Name: "batch_processing_duration_seconds"}),
		ProfilesRejected:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "argo_etl", Name: "profiles_rejected_total"}),
		DetectorHits:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "argo_etl", Name: "detector_hits_total"}, []string{"detector"}),
		ProfileQuality:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "argo_etl", Name: "profile_quality_total"}, []string{"quality"}),
		StoreEnabled:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "argo_etl", Name: "store_enabled"}),
	}
}
