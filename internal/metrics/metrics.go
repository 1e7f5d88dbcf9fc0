// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method, route, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expense_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "expense_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// SplitsRecorded counts successful shared-expense splits.
	SplitsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "expense_splits_recorded_total",
		Help: "Shared expense splits recorded.",
	})

	// PairingRequests counts pairing requests by outcome.
	PairingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expense_pairing_requests_total",
		Help: "Pairing requests by outcome.",
	}, []string{"outcome"})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
