package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment pipeline.
type Metrics struct {
	RowsLoaded   *prometheus.CounterVec // labels: dataset={beers,breweries}
	RowsExcluded *prometheus.CounterVec // labels: reason={missing_ibu,bad_row,dangling_ref,out_of_state}
	RunsTotal    *prometheus.CounterVec // labels: outcome={success,error}

	PipelineRunning    prometheus.Gauge
	EnrichmentDuration prometheus.Histogram

	// Place resolution metrics.
	UniquePlaces   prometheus.Gauge
	PlacesResolved prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Review enrichment metrics.
	ReviewRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	ReviewAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewmap",
			Name:      "rows_loaded_total",
			Help:      "Rows read from the source CSV files by dataset.",
		}, []string{"dataset"}),
		RowsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewmap",
			Name:      "rows_excluded_total",
			Help:      "Rows excluded from the enriched dataset by reason.",
		}, []string{"reason"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewmap",
			Name:      "runs_total",
			Help:      "Completed enrichment runs by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brewmap",
			Name:      "pipeline_running",
			Help:      "1 while an enrichment run is active, 0 otherwise.",
		}),
		EnrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brewmap",
			Name:      "enrichment_duration_seconds",
			Help:      "Duration of a complete enrichment run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		UniquePlaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brewmap",
			Name:      "unique_places",
			Help:      "Distinct place keys seen in the last enrichment run.",
		}),
		PlacesResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brewmap",
			Name:      "places_resolved",
			Help:      "Place keys resolved to coordinates in the last enrichment run.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewmap",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewmap",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brewmap",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brewmap",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
		ReviewRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewmap",
			Name:      "review_requests_total",
			Help:      "Review API requests by outcome.",
		}, []string{"outcome"}),
		ReviewAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brewmap",
			Name:      "review_api_duration_seconds",
			Help:      "Review API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsExcluded,
		m.RunsTotal,
		m.PipelineRunning,
		m.EnrichmentDuration,
		m.UniquePlaces,
		m.PlacesResolved,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.ReviewRequests,
		m.ReviewAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsLoaded:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "brewmap", Name: "rows_loaded_total"}, []string{"dataset"}),
		RowsExcluded:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "brewmap", Name: "rows_excluded_total"}, []string{"reason"}),
		RunsTotal:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "brewmap", Name: "runs_total"}, []string{"outcome"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "brewmap", Name: "pipeline_running"}),
		EnrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "brewmap", Name: "enrichment_duration_seconds"}),
		UniquePlaces:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "brewmap", Name: "unique_places"}),
		PlacesResolved:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "brewmap", Name: "places_resolved"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "brewmap", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "brewmap", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "brewmap", Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "brewmap", Name: "geocode_enabled"}),
		ReviewRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "brewmap", Name: "review_requests_total"}, []string{"outcome"}),
		ReviewAPIDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "brewmap", Name: "review_api_duration_seconds"}),
	}
}
