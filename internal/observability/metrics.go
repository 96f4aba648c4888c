// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the configuration proxy.
//
// Metrics are exposed on /metrics. Every metric operation is safe for
// concurrent use.
package observability

import (
	"time"

	"github.com/configproxy/core/internal/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace  = "configproxy"
	resolverSubsystem = "resolver"
	upstreamSubsystem = "upstream"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the collectors for resolution and upstream traffic.
type Metrics struct {
	// ResolutionsTotal counts operations by name and status.
	// Labels: operation (root_configurations, family, icon, resolve), status
	ResolutionsTotal *prometheus.CounterVec

	// ResolutionErrorsTotal counts typed resolution failures.
	// Labels: kind (NO_FAMILY_FOR_CONFIGURATION, NO_COMPONENT_IN_FAMILY)
	ResolutionErrorsTotal *prometheus.CounterVec

	// ResolutionDurationSeconds measures time spent resolving, fetch included.
	// Labels: operation
	ResolutionDurationSeconds *prometheus.HistogramVec

	// RootConfigurations is the size of the last root configuration index.
	RootConfigurations prometheus.Gauge

	// UpstreamRequestDurationSeconds measures component server calls.
	// Labels: endpoint, status
	UpstreamRequestDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. Passing a
// fresh registry keeps tests independent of the global one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: resolverSubsystem,
				Name:      "operations_total",
				Help:      "Total resolver operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		ResolutionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: resolverSubsystem,
				Name:      "errors_total",
				Help:      "Total resolution failures by kind",
			},
			[]string{"kind"},
		),
		ResolutionDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: resolverSubsystem,
				Name:      "duration_seconds",
				Help:      "Time spent per resolver operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RootConfigurations: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: resolverSubsystem,
				Name:      "root_configurations",
				Help:      "Number of root configurations in the last resolved index",
			},
		),
		UpstreamRequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: upstreamSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Component server request latency by endpoint and status",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "status"},
		),
	}
}

// RecordOperation counts one operation and its duration.
func (m *Metrics) RecordOperation(operation, status string, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(operation, status).Inc()
	m.ResolutionDurationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordResolutionError(kind string) {
	m.ResolutionErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveUpstream matches client.ObserveFunc.
func (m *Metrics) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	m.UpstreamRequestDurationSeconds.WithLabelValues(endpoint, client.StatusLabel(status)).Observe(elapsed.Seconds())
}
