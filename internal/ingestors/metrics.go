package ingestors

import (
	"traffic-rollup/internal/shared/metrics"
)

var (
	metricRunIngestedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "run_ingested_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	metricRecordDecodedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "record_decoded_total",
		},
		[]string{"outcome"},
	)

	metricRunDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "run_duration_seconds",
			Buckets:   metrics.RunDurationBuckets,
		},
		[]string{metrics.FieldErrorCode},
	)

	metricRunsInFlight = metrics.NewGauge(
		metrics.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "runs_in_flight",
		},
	)
)
