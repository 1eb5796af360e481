package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ev_demand"

// Metrics holds the Prometheus counters, histograms, and gauges for demand analysis.
type Metrics struct {
	Analyses         *prometheus.CounterVec // labels: operation={analyze,batch,refresh,update_population,update_stations}
	AnalysisFailures *prometheus.CounterVec // labels: reason={validation,not_found,internal}
	BatchSkipped     prometheus.Counter
	AreasStored      prometheus.Gauge

	// Event channel metrics.
	EventsPublished    *prometheus.CounterVec // labels: event
	EventHandlerErrors *prometheus.CounterVec // labels: event

	// Population/station lookup metrics.
	LookupRequests *prometheus.CounterVec   // labels: kind={population,stations}, outcome={success,error}
	LookupCache    *prometheus.CounterVec   // labels: kind={population,stations}, result={hit,miss}
	LookupDuration *prometheus.HistogramVec // labels: kind
}

func newMetrics() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Demand analyses performed by operation.",
		}, []string{"operation"}),
		AnalysisFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Rejected or failed analyses by reason.",
		}, []string{"reason"}),
		BatchSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_skipped_total",
			Help:      "Areas skipped during batch analysis because of invalid input.",
		}),
		AreasStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "areas_stored",
			Help:      "Number of areas with a stored analysis.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published on the event channel.",
		}, []string{"event"}),
		EventHandlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_errors_total",
			Help:      "Subscriber failures while handling domain events.",
		}, []string{"event"}),
		LookupRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_requests_total",
			Help:      "Open data API requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		LookupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_total",
			Help:      "Lookup cache results by kind.",
		}, []string{"kind", "result"}),
		LookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Open data API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Analyses,
		m.AnalysisFailures,
		m.BatchSkipped,
		m.AreasStored,
		m.EventsPublished,
		m.EventHandlerErrors,
		m.LookupRequests,
		m.LookupCache,
		m.LookupDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
