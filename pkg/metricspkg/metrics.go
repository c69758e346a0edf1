// Package metricspkg holds the application Prometheus collectors.
package metricspkg

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mem_bank",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mem_bank",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mem_bank",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"method", "path"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mem_bank",
			Subsystem: "bank",
			Name:      "operations_total",
			Help:      "Total number of bank operations by outcome.",
		},
		[]string{"op", "status"},
	)

	admissionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mem_bank",
			Subsystem: "bank",
			Name:      "admission_rejections_total",
			Help:      "Total number of operations shed by per-user gatekeepers.",
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		operations,
		admissionRejections,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncHTTPInFlight tracks a request entering the HTTP stack.
func IncHTTPInFlight() { httpInFlight.Inc() }

// DecHTTPInFlight tracks a request leaving the HTTP stack.
func DecHTTPInFlight() { httpInFlight.Dec() }

// ObserveHTTPRequest records one handled HTTP request.
func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// IncOperation records one bank operation outcome. Status is "ok" or the
// external error name.
func IncOperation(op, status string) {
	operations.WithLabelValues(op, status).Inc()
}

// IncAdmissionRejection records one operation shed by a user's gatekeeper.
func IncAdmissionRejection(op string) {
	admissionRejections.WithLabelValues(op).Inc()
}
