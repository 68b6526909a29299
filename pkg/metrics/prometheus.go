package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "node_dashboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "node_dashboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RPC client metrics
	RpcCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "node_dashboard",
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total number of node RPC calls",
		},
		[]string{"method", "status"},
	)

	RpcCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "node_dashboard",
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Node RPC call duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// Node status metrics
	NodeStatusCheckTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "node_dashboard",
			Subsystem: "node",
			Name:      "status_check_total",
			Help:      "Total number of node status checks",
		},
		[]string{"status"},
	)

	NodeStatusCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "node_dashboard",
			Subsystem: "node",
			Name:      "status_check_duration_seconds",
			Help:      "Node status check duration in seconds",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	NodeOnline = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "node_dashboard",
			Subsystem: "node",
			Name:      "online",
			Help:      "Whether a node answered all status probes (1 online, 0 offline)",
		},
		[]string{"node_name"},
	)

	NodeBeaconHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "node_dashboard",
			Subsystem: "node",
			Name:      "beacon_height",
			Help:      "Last observed beacon chain height per node",
		},
		[]string{"node_name"},
	)

	RegisteredNodesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "node_dashboard",
			Subsystem: "node",
			Name:      "registered_count",
			Help:      "Number of registered node endpoints",
		},
	)

	// Scheduler metrics
	SchedulerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "node_dashboard",
			Subsystem: "scheduler",
			Name:      "jobs_total",
			Help:      "Total number of scheduled jobs executed",
		},
		[]string{"job_name", "status"},
	)

	SchedulerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "node_dashboard",
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Scheduled job execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"job_name"},
	)

	LastSchedulerJobTime = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "node_dashboard",
			Subsystem: "scheduler",
			Name:      "last_job_timestamp",
			Help:      "Unix timestamp of last job execution",
		},
		[]string{"job_name"},
	)
)

// Metrics provides convenience methods for recording metrics
type Metrics struct{}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, http.StatusText(statusCode)).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRpcCall records a node RPC call metric
func (m *Metrics) RecordRpcCall(method string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	RpcCallsTotal.WithLabelValues(method, status).Inc()
	RpcCallDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordStatusCheck records a node status check metric
func (m *Metrics) RecordStatusCheck(online bool, duration time.Duration) {
	status := "online"
	if !online {
		status = "offline"
	}
	NodeStatusCheckTotal.WithLabelValues(status).Inc()
	NodeStatusCheckDuration.Observe(duration.Seconds())
}

// UpdateNodeStatus updates the per-node status gauges
func (m *Metrics) UpdateNodeStatus(nodeName string, online bool, beaconHeight uint64) {
	value := 0.0
	if online {
		value = 1.0
	}
	NodeOnline.WithLabelValues(nodeName).Set(value)
	if online {
		NodeBeaconHeight.WithLabelValues(nodeName).Set(float64(beaconHeight))
	}
}

// UpdateRegisteredNodesCount updates the count of registered endpoints
func (m *Metrics) UpdateRegisteredNodesCount(count int) {
	RegisteredNodesCount.Set(float64(count))
}

// RecordSchedulerJob records a scheduler job execution
func (m *Metrics) RecordSchedulerJob(jobName string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	SchedulerJobsTotal.WithLabelValues(jobName, status).Inc()
	SchedulerJobDuration.WithLabelValues(jobName).Observe(duration.Seconds())
	LastSchedulerJobTime.WithLabelValues(jobName).SetToCurrentTime()
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
