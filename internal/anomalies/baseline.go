package anomalies

import (
	"math"

	"traffic-rollup/internal/models"
)

// Metric names a tracked window metric.
type Metric string

const (
	MetricQPS        Metric = "qps"
	MetricErrorRate  Metric = "error_rate"
	MetricSlowRate   Metric = "slow_rate"
	MetricP50Latency Metric = "p50_latency"
)

// TrackedMetrics returns the metrics the detector scores, in a stable order.
func TrackedMetrics() []Metric {
	return []Metric{MetricQPS, MetricErrorRate, MetricSlowRate, MetricP50Latency}
}

// WindowMetrics are the values of one finalized window that the detector compares against a baseline.
type WindowMetrics struct {
	QPS        float64
	ErrorRate  float64
	SlowRate   float64
	P50Latency float64
}

func MetricsOf(summary *models.WindowSummary) WindowMetrics {
	return WindowMetrics{
		QPS:        summary.QPS,
		ErrorRate:  summary.ErrorRate,
		SlowRate:   summary.SlowRate,
		P50Latency: summary.DurationP50,
	}
}

func (m WindowMetrics) Value(metric Metric) float64 {
	switch metric {
	case MetricQPS:
		return m.QPS
	case MetricErrorRate:
		return m.ErrorRate
	case MetricSlowRate:
		return m.SlowRate
	case MetricP50Latency:
		return m.P50Latency
	default:
		return 0
	}
}

// Baseline is the rolling history of the last K finalized windows of one resolution.
// The pipeline owns one Baseline per resolution and feeds it windows in ascending start order.
type Baseline struct {
	capacity int
	rings    map[Metric]*ring
	windows  int
}

func NewBaseline(capacity int) *Baseline {
	capacity = max(capacity, 1)
	rings := make(map[Metric]*ring, len(TrackedMetrics()))
	for _, metric := range TrackedMetrics() {
		rings[metric] = &ring{values: make([]float64, 0, capacity)}
	}
	return &Baseline{capacity: capacity, rings: rings}
}

// Len is the number of windows the baseline currently holds, at most its capacity.
func (b *Baseline) Len() int {
	return min(b.windows, b.capacity)
}

func (b *Baseline) Capacity() int { return b.capacity }

// RecordWindow appends the tracked metrics of a finalized window, evicting the oldest when full.
func (b *Baseline) RecordWindow(summary *models.WindowSummary) {
	b.Record(MetricsOf(summary))
}

func (b *Baseline) Record(metrics WindowMetrics) {
	for metric, r := range b.rings {
		r.push(metrics.Value(metric), b.capacity)
	}
	b.windows++
}

func (b *Baseline) Mean(metric Metric) float64 {
	r, ok := b.rings[metric]
	if !ok || len(r.values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range r.values {
		sum += v
	}
	return sum / float64(len(r.values))
}

// StdDev is the population standard deviation of the held values.
func (b *Baseline) StdDev(metric Metric) float64 {
	r, ok := b.rings[metric]
	if !ok || len(r.values) < 2 {
		return 0
	}
	mean := b.Mean(metric)
	sum := 0.0
	for _, v := range r.values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(r.values)))
}

type ring struct {
	values []float64
	next   int
}

func (r *ring) push(value float64, capacity int) {
	if len(r.values) < capacity {
		r.values = append(r.values, value)
		return
	}
	r.values[r.next] = value
	r.next = (r.next + 1) % capacity
}
