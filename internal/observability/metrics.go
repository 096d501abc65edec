package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "paleotemp"

// Metrics holds the Prometheus counters, histograms, and gauges for the conversion service.
type Metrics struct {
	// Conversions is labelled by outcome={success,rejected,error}.
	Conversions      *prometheus.CounterVec
	RowsByStatus     *prometheus.CounterVec
	RunWarnings      prometheus.Counter
	RunDuration      prometheus.Histogram
	StageDuration    *prometheus.HistogramVec
	ConverterReady   prometheus.Gauge
	ResultsPublished prometheus.Counter
	PublishErrors    prometheus.Counter

	// Plate rotation metrics. RotationRequests is labelled by
	// outcome={success,error,malformed}, RotationCache by result={hit,miss}.
	RotationRequests    *prometheus.CounterVec
	RotationCache       *prometheus.CounterVec
	RotationAPIDuration prometheus.Histogram
	RotationEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Conversions,
		m.RowsByStatus,
		m.RunWarnings,
		m.RunDuration,
		m.StageDuration,
		m.ConverterReady,
		m.ResultsPublished,
		m.PublishErrors,
		m.RotationRequests,
		m.RotationCache,
		m.RotationAPIDuration,
		m.RotationEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversion runs by outcome.",
		}, []string{"outcome"}),
		RowsByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Converted rows by final validation status.",
		}, []string{"status"}),
		RunWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_warnings_total",
			Help:      "Runs that finished with at least one warning.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete pipeline run.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of a single pipeline stage.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"stage"}),
		ConverterReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "converter_ready",
			Help:      "1 once reference datasets are loaded, 0 otherwise.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_published_total",
			Help:      "Conversion results written to the results topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish a conversion result.",
		}),
		RotationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_requests_total",
			Help:      "Plate rotation API requests by outcome.",
		}, []string{"outcome"}),
		RotationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_cache_total",
			Help:      "Rotated-point cache lookups by result.",
		}, []string{"result"}),
		RotationAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rotation_api_duration_seconds",
			Help:      "GPlates web service request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RotationEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rotation_enabled",
			Help:      "1 when plate rotation is enabled, 0 otherwise.",
		}),
	}
}
