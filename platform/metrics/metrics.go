// Package metrics provides Prometheus collectors shared across modules.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// SnapshotFetchDuration tracks booking snapshot reads.
	SnapshotFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_snapshot_fetch_duration_seconds",
			Help:    "Booking snapshot fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"strategy"}, // strategy: joined, fallback
	)

	// SmartStatusComputed counts derived statuses by overall status.
	SmartStatusComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_smart_status_computed_total",
			Help: "Total number of smart statuses computed",
		},
		[]string{"overall_status", "role"},
	)

	// ActionExecuted counts executed booking actions.
	ActionExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_action_executed_total",
			Help: "Total number of booking actions executed",
		},
		[]string{"action", "result"}, // result: success, failure
	)

	// ApprovalCallLatency tracks calls to the approval endpoint.
	ApprovalCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_approval_call_latency_ms",
			Help:    "Approval endpoint call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)

	// JobProcessed counts background jobs by task type and outcome.
	JobProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_processed_total",
			Help: "Total number of background jobs processed",
		},
		[]string{"task", "status"},
	)
)

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordSnapshotFetch records one snapshot read.
func RecordSnapshotFetch(strategy string, duration time.Duration) {
	SnapshotFetchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// IncrementSmartStatus counts one computed status.
func IncrementSmartStatus(overallStatus, role string) {
	SmartStatusComputed.WithLabelValues(overallStatus, role).Inc()
}

// IncrementActionExecuted counts one action execution.
func IncrementActionExecuted(action string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	ActionExecuted.WithLabelValues(action, result).Inc()
}

// RecordApprovalCall records one approval endpoint call.
func RecordApprovalCall(status string, duration time.Duration) {
	ApprovalCallLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

// IncrementJobProcessed counts one processed background job.
func IncrementJobProcessed(task, status string) {
	JobProcessed.WithLabelValues(task, status).Inc()
}

// Middleware records request latency using the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Handler serves the default Prometheus registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
