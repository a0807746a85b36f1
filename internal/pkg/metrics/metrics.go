package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestLogsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reqtrail_request_logs_written_total",
		Help: "The total number of request log records persisted",
	})

	RequestLogsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqtrail_request_logs_dropped_total",
		Help: "Request log records dropped before persistence",
	}, []string{"reason"})

	CleanupDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqtrail_cleanup_deleted_total",
		Help: "Log records removed by the retention job",
	}, []string{"trigger"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reqtrail_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
