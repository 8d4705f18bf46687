package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	syncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_items_total",
			Help: "Catalog entries processed, by reconcile action and resulting status.",
		},
		[]string{"action", "status"},
	)
	syncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Sync runs, by outcome.",
		},
		[]string{"mode", "outcome"},
	)
	syncRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_run_duration_seconds",
			Help:    "Histogram of sync run durations.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)
	remoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_remote_calls_total",
			Help: "Billing provider calls, by operation and result kind.",
		},
		[]string{"op", "result"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(syncItemsTotal)
	prometheus.MustRegister(syncRunsTotal)
	prometheus.MustRegister(syncRunDuration)
	prometheus.MustRegister(remoteCallsTotal)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// RecordItem counts one processed catalog entry.
func RecordItem(action, status string) {
	syncItemsTotal.WithLabelValues(action, status).Inc()
}

// RecordRun records a finished sync run. outcome is "ok", "partial" or "failed".
func RecordRun(dryRun bool, outcome string, duration time.Duration) {
	mode := runMode(dryRun)
	syncRunsTotal.WithLabelValues(mode, outcome).Inc()
	syncRunDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordRemoteCall counts one provider call attempt. result is "ok" or an error kind.
func RecordRemoteCall(op, result string) {
	remoteCallsTotal.WithLabelValues(op, result).Inc()
}

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func runMode(dryRun bool) string {
	if dryRun {
		return "dry_run"
	}
	return "apply"
}

// classifyStatus buckets an HTTP status code.
func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler returns the HTTP handler exporting Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
