package sketches

import (
	"fmt"
	"math"
	"sort"
)

// Centroid is a cluster of nearby values in a QuantileSketch.
type Centroid struct {
	Mean   float64
	Weight float64
}

// QuantileSketch is a t-digest style approximate quantile estimator.
// Memory is bounded by 2*compression centroids regardless of stream length.
type QuantileSketch struct {
	metric      string
	compression int
	centroids   []Centroid
	sorted      bool
	count       float64
	sum         float64
	min         float64
	max         float64
}

// NewQuantileSketch creates a sketch for the named metric. Sketches only merge
// with sketches of the same metric and compression.
func NewQuantileSketch(metric string, compression int) *QuantileSketch {
	if compression < 1 {
		compression = 1
	}
	return &QuantileSketch{
		metric:      metric,
		compression: compression,
		centroids:   make([]Centroid, 0, 2*compression+1),
		sorted:      true,
		min:         math.Inf(1),
		max:         math.Inf(-1),
	}
}

func (s *QuantileSketch) Metric() string   { return s.metric }
func (s *QuantileSketch) Compression() int { return s.compression }
func (s *QuantileSketch) Count() float64   { return s.count }
func (s *QuantileSketch) Len() int         { return len(s.centroids) }

// Min returns the smallest value added, or 0 for an empty sketch.
func (s *QuantileSketch) Min() float64 {
	if s.count == 0 {
		return 0
	}
	return s.min
}

// Max returns the largest value added, or 0 for an empty sketch.
func (s *QuantileSketch) Max() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max
}

// Mean is exact: it is tracked from the running sum, not from centroids.
func (s *QuantileSketch) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / s.count
}

func (s *QuantileSketch) Add(value float64) {
	s.AddWeighted(value, 1)
}

// AddWeighted appends a centroid. Non-finite values and weights that are not finite and positive are ignored.
func (s *QuantileSketch) AddWeighted(value, weight float64) {
	if !(weight > 0) || math.IsInf(weight, 0) || math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}

	if value < s.min {
		s.min = value
	}
	if value > s.max {
		s.max = value
	}
	s.count += weight
	s.sum += value * weight

	s.centroids = append(s.centroids, Centroid{Mean: value, Weight: weight})
	s.sorted = false

	if len(s.centroids) > 2*s.compression {
		s.compress()
	}
}

// Merge folds other into s.
func (s *QuantileSketch) Merge(other *QuantileSketch) error {
	if other == nil {
		return nil
	}
	if s.metric != other.metric {
		return fmt.Errorf("%w: quantile metric %q != %q", ErrSketchMergeMismatch, s.metric, other.metric)
	}
	if s.compression != other.compression {
		return fmt.Errorf("%w: quantile compression %d != %d", ErrSketchMergeMismatch, s.compression, other.compression)
	}
	if other.count == 0 {
		return nil
	}

	if other.min < s.min {
		s.min = other.min
	}
	if other.max > s.max {
		s.max = other.max
	}
	s.count += other.count
	s.sum += other.sum
	s.centroids = append(s.centroids, other.centroids...)
	s.sorted = false

	if len(s.centroids) > s.compression {
		s.compress()
	}
	return nil
}

// Percentile returns the approximate value at percentile p in [0, 100].
// p<=0 returns the minimum, p>=100 the maximum, and an empty sketch returns 0.
func (s *QuantileSketch) Percentile(p float64) float64 {
	if s.count == 0 {
		return 0
	}
	if p <= 0 {
		return s.min
	}
	if p >= 100 {
		return s.max
	}

	s.sortCentroids()

	// Each centroid sits at the middle of the rank range it covers; min and
	// max anchor ranks 0 and count. Interpolating between those points keeps
	// the result monotone in p.
	rank := p / 100 * s.count
	prevRank, prevValue := 0.0, s.min
	cumulative := 0.0
	for _, c := range s.centroids {
		center := cumulative + c.Weight/2
		if rank <= center {
			return interpolate(prevRank, prevValue, center, c.Mean, rank)
		}
		prevRank, prevValue = center, c.Mean
		cumulative += c.Weight
	}
	return interpolate(prevRank, prevValue, s.count, s.max, rank)
}

func interpolate(x0, y0, x1, y1, x float64) float64 {
	if x1 <= x0 {
		return y1
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

func (s *QuantileSketch) sortCentroids() {
	if s.sorted {
		return
	}
	sort.Slice(s.centroids, func(i, j int) bool {
		return s.centroids[i].Mean < s.centroids[j].Mean
	})
	s.sorted = true
}

// compress merges adjacent centroids until at most compression remain.
// Merges are bounded by the arcsine scale function so centroids near the
// tails stay small; the bound is loosened if one pass is not enough.
func (s *QuantileSketch) compress() {
	if len(s.centroids) <= 1 {
		return
	}
	s.sortCentroids()

	for scale := 1.0; ; scale *= 2 {
		merged := s.mergeAdjacent(scale)
		if len(merged) <= s.compression {
			s.centroids = merged
			return
		}
	}
}

func (s *QuantileSketch) mergeAdjacent(scale float64) []Centroid {
	normalizer := float64(s.compression) / (2 * math.Pi * scale)
	k := func(q float64) float64 {
		q = math.Min(math.Max(q, 0), 1)
		return normalizer * math.Asin(2*q-1)
	}

	merged := make([]Centroid, 0, s.compression+1)
	cumulative := 0.0
	kLeft := k(0)
	current := s.centroids[0]

	for _, next := range s.centroids[1:] {
		proposed := current.Weight + next.Weight
		if k((cumulative+proposed)/s.count)-kLeft <= 1 {
			// Incremental weighted mean; Mean*Weight can overflow for large values.
			current.Mean += (next.Mean - current.Mean) * (next.Weight / proposed)
			current.Weight = proposed
			continue
		}
		merged = append(merged, current)
		cumulative += current.Weight
		kLeft = k(cumulative / s.count)
		current = next
	}
	return append(merged, current)
}
