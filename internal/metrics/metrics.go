// Package metrics exposes the process-wide telemetry registry:
// ingestion counters, operation histograms, host-resource gauges, and
// the HTTP timing middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LogsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logs_received_total",
			Help: "Total number of log records accepted at the ingest front-end",
		},
		[]string{"device_id", "log_level"},
	)

	StreamMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_stream_messages_total",
			Help: "Stream append outcomes",
		},
		[]string{"status"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_cache_hits_total",
			Help: "Query-path cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_cache_misses_total",
			Help: "Query-path cache misses",
		},
	)

	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Duration of stream and cache operations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	BatchProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batch_processing_duration_seconds",
			Help:    "Duration of batch enqueue and batch persist operations",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"batch_size"},
	)

	LogsProcessingErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logs_processing_errors_total",
			Help: "Worker-side processing errors by type",
		},
		[]string{"error_type"},
	)

	LogsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logs_persisted_total",
			Help: "Total number of rows committed to the store by workers",
		},
	)

	StreamSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "redis_stream_size",
			Help: "Approximate length of the log stream",
		},
	)

	UnhandledErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_unhandled_errors_total",
			Help: "Faults converted to 500 by the top-level handler",
		},
	)
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route template, and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration by method and route template",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPRequestSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request body size by method and route template",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "route"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size by method and route template",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "route"},
	)
)

var (
	SystemCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_cpu_percent", Help: "Host CPU utilisation percentage"},
	)
	SystemMemoryUsedBytes = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_memory_used_bytes", Help: "Host memory used"},
	)
	SystemMemoryAvailableBytes = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_memory_available_bytes", Help: "Host memory available"},
	)
	SystemMemoryTotalBytes = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_memory_total_bytes", Help: "Host memory total"},
	)
	SystemDiskUsedBytes = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_disk_used_bytes", Help: "Host disk used"},
	)
	SystemDiskFreeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_disk_free_bytes", Help: "Host disk free"},
	)
	SystemDiskTotalBytes = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "system_disk_total_bytes", Help: "Host disk total"},
	)
)
