package connections

import (
	"time"

	"traffic-rollup/internal/models"
)

// Tally is the incremental form of Analyze. Instead of keeping every
// interval it adds each observed interval to the counts of the buckets it
// touches, so memory grows with the number of buckets, not with requests.
//
// A Tally is owned by a single shard and is not safe for concurrent use.
type Tally struct {
	buckets map[models.BucketKey]*Counts
}

func NewTally() *Tally {
	return &Tally{buckets: make(map[models.BucketKey]*Counts)}
}

func (t *Tally) Len() int { return len(t.buckets) }

// Observe registers interval against every bucket of the given resolution it
// touches, using the same inequalities as Analyze.
func (t *Tally) Observe(resolution models.Resolution, interval Interval) {
	step := resolution.Duration()
	first := resolution.Truncate(interval.Arrival)
	last := resolution.Truncate(interval.Completion)

	t.bucket(resolution, first).New++

	for start := first; start.Before(last); start = start.Add(step) {
		t.bucket(resolution, start).Concurrent++
	}

	activeFrom := first
	// An arrival exactly on a boundary also touches the end of the previous window.
	if interval.Arrival.Equal(first) {
		activeFrom = first.Add(-step)
	}
	for start := activeFrom; !start.After(last); start = start.Add(step) {
		t.bucket(resolution, start).Active++
	}
}

// Stats returns the statistics of a bucket, or zero stats if nothing touched it.
func (t *Tally) Stats(key models.BucketKey) Stats {
	counts, ok := t.buckets[key]
	if !ok {
		return Stats{}
	}
	return counts.Stats()
}

func (t *Tally) Counts(key models.BucketKey) Counts {
	if counts, ok := t.buckets[key]; ok {
		return *counts
	}
	return Counts{}
}

// Merge adds other's counts into t. Shards observe disjoint records, so summing is exact.
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	for key, counts := range other.buckets {
		existing, ok := t.buckets[key]
		if !ok {
			copied := *counts
			t.buckets[key] = &copied
			continue
		}
		existing.add(*counts)
	}
}

func (t *Tally) bucket(resolution models.Resolution, start time.Time) *Counts {
	key := models.BucketKey{Resolution: resolution, BucketStart: start}
	counts, ok := t.buckets[key]
	if !ok {
		counts = &Counts{}
		t.buckets[key] = counts
	}
	return counts
}
