package anomalies

import (
	"math"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	maxScore = 100.0
	// maxDeviation caps the |z| a single metric contributes.
	maxDeviation = 10.0
	// σ never drops below 1% of |mean|, so a flat baseline still yields finite z-scores.
	relativeSigmaFloor = 0.01
	absoluteSigmaFloor = 1e-9
)

// weights sum to 10: capped deviations on every metric reach exactly maxScore.
var weights = map[Metric]float64{
	MetricQPS:        3,
	MetricErrorRate:  3,
	MetricSlowRate:   2,
	MetricP50Latency: 2,
}

type Config struct {
	SigmaMultiplier    float64
	MinBaselineWindows int
}

// Result is the outcome of scoring one window.
type Result struct {
	Score    float64
	Flags    []string
	Severity Severity
	// Deviations holds the z-score of every tracked metric; empty on cold start.
	Deviations map[Metric]float64
}

type Detector struct {
	sigmaMultiplier    float64
	minBaselineWindows int
}

func NewDetector(config Config) *Detector {
	return &Detector{
		sigmaMultiplier:    config.SigmaMultiplier,
		minBaselineWindows: config.MinBaselineWindows,
	}
}

// Score compares metrics against baseline. A baseline with fewer than the
// configured minimum windows yields a zero score and no flags.
func (d *Detector) Score(metrics WindowMetrics, baseline *Baseline) Result {
	result := Result{Flags: []string{}, Severity: SeverityNone}
	if baseline == nil || baseline.Len() < d.minBaselineWindows || baseline.Len() == 0 {
		return result
	}

	result.Deviations = make(map[Metric]float64, len(weights))
	for _, metric := range TrackedMetrics() {
		mean := baseline.Mean(metric)
		sigma := max(baseline.StdDev(metric), relativeSigmaFloor*math.Abs(mean), absoluteSigmaFloor)
		z := (metrics.Value(metric) - mean) / sigma
		result.Deviations[metric] = z

		result.Score += weights[metric] * min(math.Abs(z), maxDeviation)
		if math.Abs(z) > d.sigmaMultiplier {
			result.Flags = append(result.Flags, flagName(metric, z))
		}
	}
	result.Score = min(result.Score, maxScore)
	if len(result.Flags) > 0 {
		result.Severity = severityOf(result.Score)
	}
	return result
}

func flagName(metric Metric, z float64) string {
	if z > 0 {
		return string(metric) + "_spike"
	}
	return string(metric) + "_drop"
}

func severityOf(score float64) Severity {
	switch {
	case score >= 75:
		return SeverityCritical
	case score >= 50:
		return SeverityHigh
	case score >= 25:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
