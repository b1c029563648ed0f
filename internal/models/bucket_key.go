package models

import (
	"fmt"
	"time"
)

// BucketKey identifies one window: a resolution and the UTC start of the bucket.
type BucketKey struct {
	Resolution  Resolution `json:"resolution"`
	BucketStart time.Time  `json:"bucketStart"`
}

// NewBucketKey derives the key of the bucket containing t at the given resolution.
func NewBucketKey(resolution Resolution, t time.Time) BucketKey {
	return BucketKey{
		Resolution:  resolution,
		BucketStart: resolution.Truncate(t),
	}
}

func (k BucketKey) End() time.Time {
	return k.BucketStart.Add(k.Resolution.Duration())
}

// Next returns the key of the following bucket at the same resolution.
func (k BucketKey) Next() BucketKey {
	return BucketKey{Resolution: k.Resolution, BucketStart: k.End()}
}

func (k BucketKey) String() string {
	return fmt.Sprintf("%s/%s", k.Resolution, k.Resolution.FormatWindowStart(k.BucketStart))
}

// Before orders keys by resolution rank, then by bucket start.
func (k BucketKey) Before(other BucketKey) bool {
	if k.Resolution != other.Resolution {
		return k.Resolution.Rank() < other.Resolution.Rank()
	}
	return k.BucketStart.Before(other.BucketStart)
}
