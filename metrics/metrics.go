// Package metrics registers the Prometheus collectors for the visitor service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitor_events_ingested_total",
			Help: "Total number of visit events recorded",
		},
		[]string{"event"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visitor_store_operation_duration_seconds",
			Help:    "Duration of counter store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitor_store_errors_total",
			Help: "Total number of counter store errors, including soft-failed reads",
		},
		[]string{"driver", "operation"},
	)

	ArchiveEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitor_archive_events_total",
			Help: "Events handled by the ClickHouse archive by result (inserted, failed, dropped)",
		},
		[]string{"result"},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "visitor_live_clients",
			Help: "Current number of connected live stats websocket clients",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveStore records the duration of a store operation and counts it as an
// error when err is non-nil.
func ObserveStore(driver, operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(driver, operation).Inc()
	}
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
