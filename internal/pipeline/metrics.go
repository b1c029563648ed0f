package pipeline

import (
	"traffic-rollup/internal/shared/metrics"
)

const (
	stageMerge    = "merge"
	stageFinalize = "finalize"
)

var (
	metricStageDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubPipeline,
			Name:      "stage_duration_seconds",
			Buckets:   metrics.DefBuckets,
		},
		[]string{"stage"},
	)
)
