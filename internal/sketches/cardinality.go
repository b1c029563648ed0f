package sketches

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

const (
	MinPrecision = 4
	MaxPrecision = 18

	// two64 is the size of the hash space used for the large range correction.
	two64 = 18446744073709551616.0
)

// CardinalitySketch is a HyperLogLog distinct-count estimator over strings.
type CardinalitySketch struct {
	precision uint8
	registers []uint8
}

func NewCardinalitySketch(precision int) (*CardinalitySketch, error) {
	if precision < MinPrecision || precision > MaxPrecision {
		return nil, fmt.Errorf("invalid hll precision %d: must be in [%d, %d]", precision, MinPrecision, MaxPrecision)
	}
	return &CardinalitySketch{
		precision: uint8(precision),
		registers: make([]uint8, 1<<precision),
	}, nil
}

func (s *CardinalitySketch) Precision() int { return int(s.precision) }

func (s *CardinalitySketch) Add(item string) {
	s.addHash(xxhash.Sum64String(item))
}

func (s *CardinalitySketch) addHash(hash uint64) {
	p := s.precision
	idx := hash & (uint64(len(s.registers)) - 1)
	// The remaining 64-p bits sit in the low end after the shift, so the
	// top p leading zeros are always present and must not be counted.
	rest := hash >> p
	rank := uint8(bits.LeadingZeros64(rest)) - p + 1

	if rank > s.registers[idx] {
		s.registers[idx] = rank
	}
}

// Cardinality returns the bias-corrected estimate of distinct items added.
func (s *CardinalitySketch) Cardinality() int64 {
	m := float64(len(s.registers))

	sum := 0.0
	zeros := 0
	for _, r := range s.registers {
		sum += math.Ldexp(1, -int(r))
		if r == 0 {
			zeros++
		}
	}

	estimate := alpha(len(s.registers)) * m * m / sum

	switch {
	case estimate <= 2.5*m && zeros > 0:
		estimate = m * math.Log(m/float64(zeros))
	case estimate > two64/30:
		estimate = -two64 * math.Log(1-estimate/two64)
	}

	return int64(math.Round(estimate))
}

// Merge takes the register-wise maximum, so overlapping items are never double counted.
func (s *CardinalitySketch) Merge(other *CardinalitySketch) error {
	if other == nil {
		return nil
	}
	if s.precision != other.precision {
		return fmt.Errorf("%w: hll precision %d != %d", ErrSketchMergeMismatch, s.precision, other.precision)
	}
	for i, r := range other.registers {
		if r > s.registers[i] {
			s.registers[i] = r
		}
	}
	return nil
}

func alpha(m int) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(m))
	}
}
