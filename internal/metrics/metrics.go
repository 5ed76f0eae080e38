// Package metrics holds the Prometheus collectors shared by the three services.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "facturacion"

// Outcome labels.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultExists  = "exists"
	ResultMissing = "missing"
	ResultError   = "error"
	ResultInvalid = "invalid"
)

// Metrics is a per-process registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	requestDuration    *prometheus.HistogramVec
	auditNotifications *prometheus.CounterVec
	clienteChecks      *prometheus.CounterVec
	eventsIngested     *prometheus.CounterVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	constLabels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by route and status.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		auditNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "audit_notifications_total",
			Help:        "Audit notifications sent to the audit sink, by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		clienteChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cliente_existence_checks_total",
			Help:        "Client existence lookups against the Clientes service, by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "audit_events_ingested_total",
			Help:        "Audit events received by the audit service, by source and result.",
			ConstLabels: constLabels,
		}, []string{"source", "result"}),
	}
	registry.MustRegister(m.requestDuration, m.auditNotifications, m.clienteChecks, m.eventsIngested)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) AuditNotification(result string) {
	if m == nil {
		return
	}
	m.auditNotifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ClienteCheck(result string) {
	if m == nil {
		return
	}
	m.clienteChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) EventIngested(source, result string) {
	if m == nil {
		return
	}
	m.eventsIngested.WithLabelValues(source, result).Inc()
}

// Middleware records the latency of every request under its route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			m.requestDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
