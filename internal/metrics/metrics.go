package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the back office.
type Metrics struct {
	HTTPRequestsTotal *prometheus.CounterVec

	RateLimitDeniedTotal *prometheus.CounterVec

	AuditRecordsWrittenTotal prometheus.Counter
	AuditRecordsDroppedTotal prometheus.Counter
	AuditWriteFailuresTotal  prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RateLimitDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_ratelimit_denied_total",
				Help: "Requests denied by the rate limiter, by policy class",
			},
			[]string{"class"},
		),
		AuditRecordsWrittenTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_audit_records_written_total",
				Help: "Audit records persisted by the background writer",
			},
		),
		AuditRecordsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_audit_records_dropped_total",
				Help: "Audit records dropped because the queue was full",
			},
		),
		AuditWriteFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_audit_write_failures_total",
				Help: "Audit record writes that failed at the store",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.RateLimitDeniedTotal,
		m.AuditRecordsWrittenTotal,
		m.AuditRecordsDroppedTotal,
		m.AuditWriteFailuresTotal,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
