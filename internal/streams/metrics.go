package streams

import (
	"traffic-rollup/internal/shared/metrics"
)

var (
	metricMessagePublishedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "message_published_total",
		},
		[]string{"stream_id"},
	)

	metricMessageConsumedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "message_consumed_total",
		},
		[]string{"stream_id", metrics.FieldErrorCode},
	)

	// Messages published but not yet taken by a worker.
	metricMessageBacklog = metrics.NewGaugeVec(
		metrics.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "message_backlog",
		},
		[]string{"stream_id"},
	)
)
