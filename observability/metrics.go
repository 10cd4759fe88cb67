// Package observability exposes the hub counters in the Prometheus text format.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeDropped  = "dropped"
)

// Metrics owns its own registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	archived   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Client requests handled, by request type and outcome.",
		}, []string{"request", "outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_deliveries_total",
			Help: "Notifications handed to connections, by outcome.",
		}, []string{"outcome"}),
		archived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_archived_events_total",
			Help: "Logged events written to the archive, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.requests, m.deliveries, m.archived)
	return m
}

// Gauges registers the live room and connection counts.
func (m *Metrics) Gauges(rooms, connections func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "chat_rooms",
			Help: "Rooms currently known to the hub.",
		}, func() float64 { return float64(rooms()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "chat_connections",
			Help: "Connections currently registered.",
		}, func() float64 { return float64(connections()) }),
	)
}

func (m *Metrics) Request(request, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(request, outcome).Inc()
}

func (m *Metrics) Delivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Archived(outcome string) {
	if m == nil {
		return
	}
	m.archived.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
