package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpErrors        *prometheus.CounterVec
	jobsCreated       prometheus.Counter
	statusUpdates     prometheus.Counter
	notificationSends *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Requests that ended in a domain error, by code.",
		}, []string{"route", "method", "code"}),
		jobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobs_created_total",
			Help: "Repair jobs created.",
		}),
		statusUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "job_status_updates_total",
			Help: "Job status updates applied.",
		}),
		notificationSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_sends_total",
			Help: "Outbound WhatsApp delivery attempts by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.jobsCreated,
		m.statusUpdates,
		m.notificationSends,
	)
	return m
}

// RecordRequest counts a finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts a request that failed with a domain error code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(route, method, code).Inc()
}

// RecordJobCreated counts a successful job creation.
func (m *Metrics) RecordJobCreated() {
	if m == nil {
		return
	}
	m.jobsCreated.Inc()
}

// RecordStatusUpdate counts a successful status update.
func (m *Metrics) RecordStatusUpdate() {
	if m == nil {
		return
	}
	m.statusUpdates.Inc()
}

// RecordNotification counts a WhatsApp delivery attempt outcome.
func (m *Metrics) RecordNotification(result string) {
	if m == nil {
		return
	}
	m.notificationSends.WithLabelValues(result).Inc()
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
