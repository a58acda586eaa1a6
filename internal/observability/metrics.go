// Package observability provides the logger and run metrics of a conversion.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of one conversion run. Each run
// owns its registry so the metrics can be exported as a node_exporter
// textfile once the batch completes.
type Metrics struct {
	Registry *prometheus.Registry

	SourcesLoaded    prometheus.Counter
	SourcesSkipped   prometheus.Counter
	CatalogVariables prometheus.Gauge
	TimeSteps        prometheus.Gauge

	RastersWritten        prometheus.Counter
	RastersFailed         prometheus.Counter
	RasterEncodeDuration  prometheus.Histogram
	LastRunSuccessSeconds prometheus.Gauge
}

// NewMetrics creates the run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SourcesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bioyearly",
			Name:      "sources_loaded_total",
			Help:      "Input files loaded into the catalog.",
		}),
		SourcesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bioyearly",
			Name:      "sources_skipped_total",
			Help:      "Input files skipped because their variable was missing.",
		}),
		CatalogVariables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bioyearly",
			Name:      "catalog_variables",
			Help:      "Variables held in the catalog, one band each.",
		}),
		TimeSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bioyearly",
			Name:      "time_steps",
			Help:      "Length of the shared time axis.",
		}),
		RastersWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bioyearly",
			Name:      "rasters_written_total",
			Help:      "Yearly rasters written successfully.",
		}),
		RastersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bioyearly",
			Name:      "rasters_failed_total",
			Help:      "Yearly rasters that could not be built or written.",
		}),
		RasterEncodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bioyearly",
			Name:      "raster_encode_duration_seconds",
			Help:      "Time to build and write one yearly raster.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastRunSuccessSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bioyearly",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that wrote every raster.",
		}),
	}

	m.Registry.MustRegister(
		m.SourcesLoaded,
		m.SourcesSkipped,
		m.CatalogVariables,
		m.TimeSteps,
		m.RastersWritten,
		m.RastersFailed,
		m.RasterEncodeDuration,
		m.LastRunSuccessSeconds,
	)
	return m
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
