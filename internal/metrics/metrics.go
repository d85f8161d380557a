package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry  *prometheus.Registry
	namespace string

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	taskOps      *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		namespace: namespace,
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.httpRequests = m.newCounter("http_requests_total",
		"HTTP requests by route template, method and status code.",
		[]string{"route", "method", "status"})
	m.httpDuration = m.newHistogram("http_request_duration_seconds",
		"HTTP request latency by route template and method.",
		[]string{"route", "method"}, prometheus.DefBuckets)
	m.taskOps = m.newCounter("task_operations_total",
		"Task operations by name and outcome.",
		[]string{"operation", "outcome"})

	return m
}

func (m *Metrics) fqName(name string) string {
	if m.namespace == "" {
		return name
	}
	return m.namespace + "_" + name
}

func (m *Metrics) newCounter(name, help string, labels []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: m.fqName(name),
		Help: help,
	}, labels)
	m.registry.MustRegister(cv)
	return cv
}

func (m *Metrics) newHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    m.fqName(name),
		Help:    help,
		Buckets: buckets,
	}, labels)
	m.registry.MustRegister(hv)
	return hv
}

func (m *Metrics) ObserveHTTPRequest(route, method string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// ObserveTaskOperation records outcome as one of "success", "not_found" or "error".
func (m *Metrics) ObserveTaskOperation(operation, outcome string) {
	m.taskOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
