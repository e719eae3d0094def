package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the sync layer.
type Metrics struct {
	FeedDeliveries      *prometheus.CounterVec // labels: path
	FeedErrors          *prometheus.CounterVec // labels: path
	DecodeDefects       *prometheus.CounterVec // labels: path
	ActiveSubscriptions prometheus.Gauge

	// Alert gate metrics.
	AlertsRaised  prometheus.Counter
	AlertsCleared prometheus.Counter
	AckAttempts   *prometheus.CounterVec // labels: outcome={accepted,locked,not_pending}

	// Content submission metrics.
	Submissions *prometheus.CounterVec // labels: kind={forum,incident}, outcome={ok,rejected,error}

	// Weather API metrics.
	WeatherRequests *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all sync metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedDeliveries,
		m.FeedErrors,
		m.DecodeDefects,
		m.ActiveSubscriptions,
		m.AlertsRaised,
		m.AlertsCleared,
		m.AckAttempts,
		m.Submissions,
		m.WeatherRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "feed_deliveries_total",
			Help:      "Snapshot deliveries applied, by remote path.",
		}, []string{"path"}),
		FeedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "feed_errors_total",
			Help:      "Subscription errors reported by the realtime service, by remote path.",
		}, []string{"path"}),
		DecodeDefects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "decode_defects_total",
			Help:      "Child records skipped because the raw value was not an object.",
		}, []string{"path"}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "landslide_sync",
			Name:      "active_subscriptions",
			Help:      "Standing subscriptions currently open.",
		}),
		AlertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "alerts_raised_total",
			Help:      "Alert gate transitions into the raised state.",
		}),
		AlertsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "alerts_cleared_total",
			Help:      "Alert gate transitions back to idle on an external all clear.",
		}),
		AckAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "ack_attempts_total",
			Help:      "Acknowledgement attempts by outcome.",
		}, []string{"outcome"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "submissions_total",
			Help:      "Content submissions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landslide_sync",
			Name:      "weather_requests_total",
			Help:      "Weather API requests by outcome.",
		}, []string{"outcome"}),
	}
}
