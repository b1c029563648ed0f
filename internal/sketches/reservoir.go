package sketches

import (
	"fmt"
	"math/rand/v2"
)

// Reservoir keeps a uniform random sample of at most capacity items from a
// stream of unknown length (Algorithm R).
type Reservoir[T any] struct {
	capacity int
	items    []T
	seen     int64
	rng      *rand.Rand
}

func NewReservoir[T any](capacity int, rng *rand.Rand) *Reservoir[T] {
	if capacity < 0 {
		capacity = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Reservoir[T]{
		capacity: capacity,
		items:    make([]T, 0, min(capacity, 64)),
		rng:      rng,
	}
}

func (r *Reservoir[T]) Capacity() int { return r.capacity }
func (r *Reservoir[T]) Seen() int64   { return r.seen }
func (r *Reservoir[T]) Len() int      { return len(r.items) }

func (r *Reservoir[T]) Add(item T) {
	r.seen++
	if len(r.items) < r.capacity {
		r.items = append(r.items, item)
		return
	}
	if r.capacity == 0 {
		return
	}
	// Keep with probability capacity/seen, replacing a uniform slot.
	if j := r.rng.Int64N(r.seen); j < int64(r.capacity) {
		r.items[j] = item
	}
}

// Samples returns a copy of the retained items.
func (r *Reservoir[T]) Samples() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Merge re-samples the union of both reservoirs down to capacity. The split
// between sources follows a hypergeometric draw over the seen counts, so every
// item of either stream ends up included with probability capacity/(seen total).
func (r *Reservoir[T]) Merge(other *Reservoir[T]) error {
	if other == nil || other.seen == 0 {
		return nil
	}
	if r.capacity != other.capacity {
		return fmt.Errorf("%w: reservoir capacity %d != %d", ErrSketchMergeMismatch, r.capacity, other.capacity)
	}

	left := r.Samples()
	right := other.Samples()
	leftRemaining := r.seen
	rightRemaining := other.seen

	merged := make([]T, 0, min(r.capacity, len(left)+len(right)))
	for len(merged) < r.capacity && (len(left) > 0 || len(right) > 0) {
		fromLeft := len(right) == 0 ||
			(len(left) > 0 && r.rng.Int64N(leftRemaining+rightRemaining) < leftRemaining)

		if fromLeft {
			merged, left = appendRandom(r.rng, merged, left)
			leftRemaining--
		} else {
			merged, right = appendRandom(r.rng, merged, right)
			rightRemaining--
		}
	}

	r.items = merged
	r.seen += other.seen
	return nil
}

// appendRandom moves a uniformly chosen element of src to dst.
func appendRandom[T any](rng *rand.Rand, dst, src []T) ([]T, []T) {
	i := rng.IntN(len(src))
	dst = append(dst, src[i])
	last := len(src) - 1
	src[i] = src[last]
	return dst, src[:last]
}
