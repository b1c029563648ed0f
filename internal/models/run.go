package models

import "time"

// RunStats are the run-level data-quality counters of one aggregation run.
type RunStats struct {
	Ingested int64                  `json:"ingested"`
	Accepted int64                  `json:"accepted"`
	Rejected map[RejectReason]int64 `json:"rejected"`
	Clamped  int64                  `json:"clamped"`
	Windows  int                    `json:"windows"`
}

func (s RunStats) RejectedTotal() int64 {
	var total int64
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunManifest describes one aggregation run and where its results live.
type RunManifest struct {
	RunID       string       `json:"runId"`
	Status      RunStatus    `json:"status"`
	Resolutions []Resolution `json:"resolutions"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Stats       *RunStats    `json:"stats,omitempty"`
}
