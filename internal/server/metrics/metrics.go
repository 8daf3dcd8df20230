// Package metrics holds the Prometheus collectors of the auth server and the
// HTTP endpoint that exposes them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the custom collectors. The zero value is not usable; build
// it with New.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthEvents      *prometheus.CounterVec
}

// New creates a private registry with the Go and process collectors plus the
// gophauth metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_grpc_requests_total",
				Help: "Total number of gRPC requests by method and status code",
			},
			[]string{"method", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophauth_grpc_request_duration_seconds",
				Help:    "gRPC request latency by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_auth_events_total",
				Help: "Total number of auth state changes and failed logins by event",
			},
			[]string{"event"},
		),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.AuthEvents)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AuthEvent counts one auth event.
func (m *Metrics) AuthEvent(event string) {
	m.AuthEvents.WithLabelValues(event).Inc()
}

// ObserveRPC records a finished RPC.
func (m *Metrics) ObserveRPC(method, code string, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
