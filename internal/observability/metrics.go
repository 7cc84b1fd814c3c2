// Package observability holds the prometheus collectors for the identity
// service. A nil *Metrics is valid and records nothing.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

type Metrics struct {
	OperationsTotal      *prometheus.CounterVec
	PublishFailuresTotal *prometheus.CounterVec
	ProviderDriftTotal   *prometheus.CounterVec
	RequestsTotal        *prometheus.CounterVec
	RequestsDuration     *prometheus.HistogramVec
	SyncJobResults       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "identity",
				Name:      "operations_total",
				Help:      "Orchestrations by operation and outcome (ok or error kind).",
			},
			[]string{"operation", "outcome"},
		),
		PublishFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "identity",
				Name:      "event_publish_failures_total",
				Help:      "Domain events that could not be published.",
			},
			[]string{"event"},
		),
		ProviderDriftTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "identity",
				Name:      "provider_drift_total",
				Help:      "Writes where the local store and the identity provider diverged.",
			},
			[]string{"operation"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "identity",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "identity",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		SyncJobResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "identity",
				Subsystem: "sync",
				Name:      "results_total",
				Help:      "Provider sync task outcomes.",
			},
			[]string{"result"}, // done|retry|dropped
		),
	}
	reg.MustRegister(m.OperationsTotal, m.PublishFailuresTotal, m.ProviderDriftTotal, m.RequestsTotal, m.RequestsDuration, m.SyncJobResults)
	return m
}

// Operation counts one orchestration; outcome is "ok" or the error kind.
func (m *Metrics) Operation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.GetKind(err).String()
	}
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) EventPublishFailed(routingKey string) {
	if m == nil {
		return
	}
	m.PublishFailuresTotal.WithLabelValues(routingKey).Inc()
}

func (m *Metrics) ProviderDrift(op string) {
	if m == nil {
		return
	}
	m.ProviderDriftTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) SyncResult(result string) {
	if m == nil {
		return
	}
	m.SyncJobResults.WithLabelValues(result).Inc()
}

// GinMiddleware records request count and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if m == nil {
			ctx.Next()
			return
		}
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		m.RequestsTotal.WithLabelValues(ctx.Request.Method, route, status).Inc()
		m.RequestsDuration.WithLabelValues(ctx.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
