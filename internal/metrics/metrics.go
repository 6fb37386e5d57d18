// Package metrics exposes Prometheus instruments for HTTP traffic, document
// store queries and reading ingestion. They register with the default
// registry and are served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ispure_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ispure_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ispure_db_query_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"collection", "operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ispure_db_query_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"collection", "operation"},
	)

	IngestMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ispure_ingest_messages_total",
			Help: "Readings received from MQTT or HTTP, by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// ObserveQuery records the duration of a store operation started at start.
// err must be nil for outcomes that are not failures, such as no documents.
func ObserveQuery(collection, operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(collection, operation).Inc()
	}
}
