package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lakeside"

// Metrics holds the Prometheus counters, histograms, and gauges for the proxy.
type Metrics struct {
	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: upstream, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: cache={weather,water,fireban,geocode}, result={hit,miss,error}

	// Weather metrics.
	WeatherSource *prometheus.CounterVec // labels: kind, source={cache,onecall,free,mock}

	// Fire-ban metrics.
	FireBanDecisions *prometheus.CounterVec // labels: source={ai,heuristic,test,unavailable}
	FireBanActive    prometheus.Gauge
	StatusPublished  *prometheus.CounterVec // labels: outcome={success,error}

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: route, code
	HTTPDuration *prometheus.HistogramVec // labels: route

	// Cache warmer metrics.
	WarmRuns *prometheus.CounterVec // labels: job, outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.WeatherSource,
		m.FireBanDecisions,
		m.FireBanActive,
		m.StatusPublished,
		m.HTTPRequests,
		m.HTTPDuration,
		m.WarmRuns,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"upstream"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		WeatherSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_responses_total",
			Help:      "Weather responses by view and the source that produced them.",
		}, []string{"kind", "source"}),
		FireBanDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_ban_decisions_total",
			Help:      "Fire-ban reports computed, by decision source.",
		}, []string{"source"}),
		FireBanActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fire_ban_active",
			Help:      "1 when the last computed report has an active ban, 0 otherwise.",
		}),
		StatusPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_ban_status_published_total",
			Help:      "Fire-ban status change events published, by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 15},
		}, []string{"route"}),
		WarmRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_warm_runs_total",
			Help:      "Scheduled cache refreshes by job and outcome.",
		}, []string{"job", "outcome"}),
	}
}
