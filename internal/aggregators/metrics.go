package aggregators

import (
	"traffic-rollup/internal/shared/metrics"
)

// metricWindowFinalizedTotal counts finalized windows.
//
// The bucket_id label identifies the window inside the next coarser period:
//   - For minute windows: "minute-XX" where XX is the minute (00-59)
//     Example: For a window starting at 2025-12-28 18:03:00 UTC, bucket_id = "minute-03"
//   - For hour windows: "hour-XX" where XX is the hour (00-23)
//     Example: For a window starting at 2025-12-28 18:00:00 UTC, bucket_id = "hour-18"
var (
	metricWindowFinalizedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "window_finalized_total",
		},
		[]string{"resolution", "bucket_id"},
	)

	metricWindowAnomalousTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "window_anomalous_total",
		},
		[]string{"resolution", "severity"},
	)

	metricRecordRejectedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "record_rejected_total",
		},
		[]string{"reason"},
	)

	metricFieldClampedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "field_clamped_total",
		},
		[]string{"field"},
	)
)
