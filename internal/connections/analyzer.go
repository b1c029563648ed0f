package connections

import (
	"time"
)

// Interval is the lifetime of one request: it opens at arrival and closes at completion.
type Interval struct {
	Arrival    time.Time
	Completion time.Time
}

// Counts are the raw connection tallies of one window.
type Counts struct {
	New        int64 `json:"new"`
	Concurrent int64 `json:"concurrent"`
	Active     int64 `json:"active"`
}

// Stats are the connection statistics reported for one window.
type Stats struct {
	New        int64
	Concurrent int64
	Active     int64
	// ReuseRate is the share of active connections that did not start in the window, in percent.
	ReuseRate float64
}

func (c Counts) Stats() Stats {
	stats := Stats{New: c.New, Concurrent: c.Concurrent, Active: c.Active}
	if c.Active > 0 {
		stats.ReuseRate = max(0, float64(c.Active-c.New)/float64(c.Active)*100)
	}
	return stats
}

func (c *Counts) add(other Counts) {
	c.New += other.New
	c.Concurrent += other.Concurrent
	c.Active += other.Active
}

// Analyze computes connection statistics for the window [windowStart, windowStart+windowSize):
//   - new: arrival in [T, T+N)
//   - concurrent: arrival < T+N and completion >= T+N (still open at the window end)
//   - active: arrival <= T+N and completion >= T (any overlap)
//
// Arrival decides when a connection starts; completion only decides when it ends.
func Analyze(intervals []Interval, windowStart time.Time, windowSize time.Duration) Stats {
	windowEnd := windowStart.Add(windowSize)

	var counts Counts
	for _, interval := range intervals {
		if !interval.Arrival.Before(windowStart) && interval.Arrival.Before(windowEnd) {
			counts.New++
		}
		if interval.Arrival.Before(windowEnd) && !interval.Completion.Before(windowEnd) {
			counts.Concurrent++
		}
		if !interval.Arrival.After(windowEnd) && !interval.Completion.Before(windowStart) {
			counts.Active++
		}
	}
	return counts.Stats()
}
