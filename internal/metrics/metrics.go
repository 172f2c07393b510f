// Package metrics holds the process's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by method, route
	// pattern and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obralog_http_requests_total",
		Help: "HTTP requests handled, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes per-request wall time by method and
	// route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obralog_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// StoreLoadFailures counts loads of the store file that degraded to
	// an empty store (unreadable or corrupt JSON).
	StoreLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obralog_store_load_failures_total",
		Help: "Times the store file failed to load and was treated as empty.",
	})
)
