// Package metrics exposes activation outcomes to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"licenseplatform/services/activation-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	decisions     *prometheus.CounterVec
	latency       prometheus.Histogram
	auditFailures prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activation",
			Name:      "decisions_total",
			Help:      "Activation requests by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "activation",
			Name:      "decision_duration_seconds",
			Help:      "Time to decide an activation request, audit write included.",
			Buckets:   prometheus.DefBuckets,
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "activation",
			Name:      "audit_append_failures_total",
			Help:      "Audit entries that could not be written.",
		}),
	}
	m.registry.MustRegister(
		m.decisions,
		m.latency,
		m.auditFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveDecision(status domain.Status, elapsed time.Duration) {
	m.decisions.WithLabelValues(status.String()).Inc()
	m.latency.Observe(elapsed.Seconds())
}

// AuditFailures counts failed audit appends.
func (m *Metrics) AuditFailures() prometheus.Counter {
	return m.auditFailures
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
