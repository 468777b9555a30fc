// Package metrics exposes Prometheus collectors for outgoing TMDB calls and
// incoming browser UI requests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "moviedeck"

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	tmdbRequests *prometheus.CounterVec
	tmdbDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tmdbRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tmdb",
			Name:      "requests_total",
			Help:      "TMDB API requests by status code.",
		}, []string{"code"}),
		tmdbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tmdb",
			Name:      "request_duration_seconds",
			Help:      "TMDB API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Browser UI requests by status code and method.",
		}, []string{"code", "method"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Browser UI request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.tmdbRequests,
		m.tmdbDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RegisterFavorites exposes the favorites count as a gauge
func (m *Metrics) RegisterFavorites(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "favorites",
		Help:      "Number of saved favorite movies.",
	}, func() float64 {
		return float64(count())
	}))
}

// InstrumentTransport wraps the TMDB client's transport
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(m.tmdbRequests,
		promhttp.InstrumentRoundTripperDuration(m.tmdbDuration, next))
}

// Middleware instruments browser UI handlers
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.httpRequests,
		promhttp.InstrumentHandlerDuration(m.httpDuration, next))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
