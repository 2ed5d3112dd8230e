// Package metrics holds the Prometheus collectors for trendlens.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	CollectorFailures *prometheus.CounterVec
	ChannelLookups    *prometheus.CounterVec
	Analyses          *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CollectorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlens_collector_failures_total",
				Help: "Trend collector calls that degraded to an empty list, by source.",
			},
			[]string{"source"},
		),
		ChannelLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlens_channel_lookups_total",
				Help: "Telegram channel detail lookups, by outcome.",
			},
			[]string{"outcome"},
		),
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlens_analyses_total",
				Help: "Completed analysis requests, by mode and status.",
			},
			[]string{"mode", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trendlens_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by route, method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trendlens_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		),
	}

	reg.MustRegister(
		m.CollectorFailures,
		m.ChannelLookups,
		m.Analyses,
		m.RequestDuration,
		m.RequestsInFlight,
	)

	return m
}

// CollectorFailed counts a degraded trend source
func (m *Metrics) CollectorFailed(source string) {
	if m == nil {
		return
	}
	m.CollectorFailures.WithLabelValues(source).Inc()
}

// ChannelLookup counts one detail lookup outcome ("ok", "not_found", ...)
func (m *Metrics) ChannelLookup(outcome string) {
	if m == nil {
		return
	}
	m.ChannelLookups.WithLabelValues(outcome).Inc()
}

// AnalysisDone counts a finished analysis
func (m *Metrics) AnalysisDone(mode, status string) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(mode, status).Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// InFlight adjusts the in-flight gauge by delta
func (m *Metrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.RequestsInFlight.Add(delta)
}
