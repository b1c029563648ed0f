package http

import (
	"traffic-rollup/internal/shared/metrics"
)

var (
	metricHTTPRequestsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubHTTP,
			Name:      "requests_total",
		},
		[]string{"method", "path", "status", metrics.FieldErrorCode},
	)

	metricHTTPRequestDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubHTTP,
			Name:      "request_duration_seconds",
			Buckets:   metrics.DefBuckets,
		},
		[]string{"method", "path", "status", metrics.FieldErrorCode},
	)

	// 1KiB to 256MiB.
	metricHTTPRequestBodyBytes = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubHTTP,
			Name:      "request_body_bytes",
			Buckets:   metrics.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"method", "path"},
	)
)
