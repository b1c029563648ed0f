package models

import (
	"fmt"
	"time"
)

type Resolution string

const (
	ResolutionDay    Resolution = "day"
	ResolutionHour   Resolution = "hour"
	ResolutionMinute Resolution = "minute"
	ResolutionSecond Resolution = "second"
)

// AllResolutions returns every supported resolution, coarsest first.
// Summaries are emitted in this order.
func AllResolutions() []Resolution {
	return []Resolution{ResolutionDay, ResolutionHour, ResolutionMinute, ResolutionSecond}
}

func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(s); r {
	case ResolutionDay, ResolutionHour, ResolutionMinute, ResolutionSecond:
		return r, nil
	default:
		return "", fmt.Errorf("invalid resolution: %q", s)
	}
}

// Rank orders resolutions the same way AllResolutions does.
func (r Resolution) Rank() int {
	switch r {
	case ResolutionDay:
		return 0
	case ResolutionHour:
		return 1
	case ResolutionMinute:
		return 2
	case ResolutionSecond:
		return 3
	default:
		panic(fmt.Sprintf("invalid Resolution: %q", r))
	}
}

func (r Resolution) Duration() time.Duration {
	switch r {
	case ResolutionDay:
		return 24 * time.Hour
	case ResolutionHour:
		return time.Hour
	case ResolutionMinute:
		return time.Minute
	case ResolutionSecond:
		return time.Second
	default:
		panic(fmt.Sprintf("invalid Resolution: %q", r))
	}
}

func (r Resolution) Seconds() float64 {
	return r.Duration().Seconds()
}

// Truncate returns the start of the window containing t, in UTC.
func (r Resolution) Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(r.Duration())
}

func (r Resolution) FormatWindowStart(t time.Time) string {
	utc := r.Truncate(t)

	switch r {
	case ResolutionDay:
		return utc.Format("20060102Z")
	case ResolutionHour:
		return utc.Format("20060102T15Z")
	case ResolutionMinute:
		return utc.Format("20060102T1504Z")
	case ResolutionSecond:
		return utc.Format("20060102T150405Z")
	}
	return ""
}

// BucketID labels the position of t inside the next coarser period, e.g. "minute-03".
// It is low-cardinality and safe to use as a metric label.
func (r Resolution) BucketID(t time.Time) string {
	utc := r.Truncate(t)

	switch r {
	case ResolutionDay:
		return fmt.Sprintf("day-%02d", utc.Day())
	case ResolutionHour:
		return fmt.Sprintf("hour-%02d", utc.Hour())
	case ResolutionMinute:
		return fmt.Sprintf("minute-%02d", utc.Minute())
	case ResolutionSecond:
		return fmt.Sprintf("second-%02d", utc.Second())
	}
	return ""
}
