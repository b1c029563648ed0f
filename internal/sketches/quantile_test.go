package sketches

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileSketch_Empty(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)

	assert.Equal(t, 0.0, s.Percentile(0))
	assert.Equal(t, 0.0, s.Percentile(50))
	assert.Equal(t, 0.0, s.Percentile(100))
	assert.Equal(t, 0.0, s.Min())
	assert.Equal(t, 0.0, s.Max())
	assert.Equal(t, 0.0, s.Mean())
}

func TestQuantileSketch_Bounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	s := NewQuantileSketch("duration", 50)
	for i := 0; i < 5000; i++ {
		s.Add(rng.ExpFloat64())
	}

	assert.Equal(t, s.Min(), s.Percentile(0))
	assert.Equal(t, s.Max(), s.Percentile(100))
	assert.Equal(t, s.Min(), s.Percentile(-5))
	assert.Equal(t, s.Max(), s.Percentile(250))
}

func TestQuantileSketch_Monotone(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	s := NewQuantileSketch("duration", 20)
	for i := 0; i < 20000; i++ {
		s.Add(math.Exp(rng.NormFloat64()))
	}

	prev := s.Percentile(0)
	for p := 0.5; p <= 100; p += 0.5 {
		current := s.Percentile(p)
		assert.LessOrEqual(t, prev, current, "percentile(%v) decreased", p)
		prev = current
	}
}

func TestQuantileSketch_ConstantStream(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)
	for i := 0; i < 1000; i++ {
		s.Add(0.5)
	}

	for _, p := range []float64{1, 50, 90, 95, 99} {
		assert.InDelta(t, 0.5, s.Percentile(p), 1e-12)
	}
	assert.InDelta(t, 0.5, s.Mean(), 1e-12)
	assert.Equal(t, 1000.0, s.Count())
}

func TestQuantileSketch_BoundedMemory(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)
	for i := 0; i < 100000; i++ {
		s.Add(float64(i))
		require.LessOrEqual(t, s.Len(), 2*100)
	}
}

func TestQuantileSketch_UniformAccuracy(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)
	rng := rand.New(rand.NewPCG(3, 5))
	for _, i := range rng.Perm(10000) {
		s.Add(float64(i + 1))
	}

	assert.InEpsilon(t, 5000, s.Percentile(50), 0.02)
	assert.InEpsilon(t, 9000, s.Percentile(90), 0.02)
	assert.InEpsilon(t, 9900, s.Percentile(99), 0.01)
	assert.InDelta(t, 5000.5, s.Mean(), 1e-6)
}

func TestQuantileSketch_MatchesDDSketch(t *testing.T) {
	t.Parallel()

	ours := NewQuantileSketch("duration", 100)
	reference, err := ddsketch.NewDefaultDDSketch(0.01)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 50000; i++ {
		v := math.Exp(rng.NormFloat64()*0.5 - 1)
		ours.Add(v)
		require.NoError(t, reference.Add(v))
	}

	for _, p := range []float64{50, 90, 95, 99} {
		expected, err := reference.GetValueAtQuantile(p / 100)
		require.NoError(t, err)
		assert.InEpsilon(t, expected, ours.Percentile(p), 0.05, "p%v", p)
	}
}

func TestQuantileSketch_Merge(t *testing.T) {
	t.Parallel()

	left := NewQuantileSketch("duration", 100)
	right := NewQuantileSketch("duration", 100)
	for i := 1; i <= 5000; i++ {
		left.Add(float64(i))
		right.Add(float64(i + 5000))
	}

	require.NoError(t, left.Merge(right))

	assert.Equal(t, 10000.0, left.Count())
	assert.Equal(t, 1.0, left.Min())
	assert.Equal(t, 10000.0, left.Max())
	assert.LessOrEqual(t, left.Len(), 100)
	assert.InEpsilon(t, 5000, left.Percentile(50), 0.02)
	assert.InEpsilon(t, 9500, left.Percentile(95), 0.01)
}

func TestQuantileSketch_MergeEmpty(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)
	s.Add(2)

	require.NoError(t, s.Merge(NewQuantileSketch("duration", 100)))
	require.NoError(t, s.Merge(nil))
	assert.Equal(t, 1.0, s.Count())
	assert.Equal(t, 2.0, s.Percentile(50))
}

func TestQuantileSketch_MergeMismatch(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)

	err := s.Merge(NewQuantileSketch("upstream_connect", 100))
	require.ErrorIs(t, err, ErrSketchMergeMismatch)
	assert.Contains(t, err.Error(), "upstream_connect")

	err = s.Merge(NewQuantileSketch("duration", 50))
	require.ErrorIs(t, err, ErrSketchMergeMismatch)
	assert.Contains(t, err.Error(), "compression")
}

func TestQuantileSketch_IgnoresNonFinite(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 100)
	s.Add(math.NaN())
	s.Add(math.Inf(1))
	s.AddWeighted(1, 0)
	s.AddWeighted(1, -2)
	s.AddWeighted(1, math.NaN())
	s.AddWeighted(1, math.Inf(1))
	s.Add(1)

	assert.Equal(t, 1.0, s.Count())
	assert.Equal(t, 1.0, s.Max())
}

func TestQuantileSketch_NaNWeightDoesNotStallCompression(t *testing.T) {
	t.Parallel()

	s := NewQuantileSketch("duration", 10)
	s.AddWeighted(1, math.NaN())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 25 {
			s.Add(float64(i))
		}
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		require.FailNow(t, "compress did not terminate")
	}
	assert.Equal(t, 25.0, s.Count())
	assert.LessOrEqual(t, s.Len(), 20)
}

func TestQuantileSketch_LargeValuesStayFinite(t *testing.T) {
	t.Parallel()

	a := NewQuantileSketch("duration", 2)
	b := NewQuantileSketch("duration", 2)
	for range 3 {
		a.Add(math.MaxFloat64 / 2)
		b.Add(math.MaxFloat64 / 2)
	}
	require.NoError(t, a.Merge(b))

	assert.False(t, math.IsInf(a.Percentile(50), 0))
	assert.InEpsilon(t, math.MaxFloat64/2, a.Percentile(50), 1e-9)
}
