package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the server's Prometheus collectors, kept on a private registry
// so several servers can live in one process.
type Metrics struct {
	registry        *prometheus.Registry
	uploads         *prometheus.CounterVec
	profiles        *prometheus.CounterVec
	profileDuration prometheus.Histogram
}

// NewMetrics registers the collectors. sessions reports the live session count.
func NewMetrics(sessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eda_uploads_total",
			Help: "Uploaded files by outcome.",
		}, []string{"result"}),
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eda_profiles_total",
			Help: "Profile report requests by dataset source and outcome.",
		}, []string{"source", "result"}),
		profileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eda_profile_duration_seconds",
			Help:    "Time spent computing profile reports.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	m.registry.MustRegister(
		m.uploads,
		m.profiles,
		m.profileDuration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "eda_sessions_active",
			Help: "Sessions currently held in memory.",
		}, func() float64 { return float64(sessions()) }),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpload counts one upload attempt.
func (m *Metrics) ObserveUpload(result string) {
	m.uploads.WithLabelValues(result).Inc()
}

// ObserveProfile records one profile request.
func (m *Metrics) ObserveProfile(source string, cached bool, err error, seconds float64) {
	switch {
	case err != nil:
		m.profiles.WithLabelValues(source, "error").Inc()
	case cached:
		m.profiles.WithLabelValues(source, "cached").Inc()
	default:
		m.profiles.WithLabelValues(source, "ok").Inc()
		m.profileDuration.Observe(seconds)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
