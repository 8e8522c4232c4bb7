// Package metrics owns the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results recorded by PostOperations.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	// PostOperations counts repository calls by operation and outcome.
	PostOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_post_operations_total",
		Help: "Post repository operations by operation and result.",
	}, []string{"op", "result"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		PostOperations,
		RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordOperation counts one repository operation.
func RecordOperation(op, result string) {
	PostOperations.WithLabelValues(op, result).Inc()
}

// Handler serves the registered collectors in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
