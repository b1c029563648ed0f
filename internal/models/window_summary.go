package models

import "time"

// WindowSummary is the finalized, immutable result for one (resolution, bucket start) window.
// It is a flat record so it can be written directly to a tabular sink.
//
// Example JSON (abridged):
//
//	{
//	  "resolution": "minute",
//	  "bucketId": "minute-03",
//	  "windowStart": "2025-12-28T18:03:00Z",
//	  "windowEnd": "2025-12-28T18:04:00Z",
//	  "windowSeconds": 60,
//	  "totalRequests": 1200,
//	  "successRequests": 1180,
//	  "successRate": 98.33,
//	  "qps": 19.67,
//	  "durationP50": 0.21,
//	  "durationP99": 2.9,
//	  "uniqueClients": 311,
//	  "newConnections": 1190,
//	  "concurrentConnections": 4,
//	  "activeConnections": 1203,
//	  "connectionReuseRate": 1.08,
//	  "anomalyScore": 0,
//	  "anomalySeverity": "none",
//	  "anomalyFlags": []
//	}
type WindowSummary struct {
	Resolution    Resolution `json:"resolution"`
	BucketID      string     `json:"bucketId"`
	WindowStart   time.Time  `json:"windowStart"`
	WindowEnd     time.Time  `json:"windowEnd"`
	WindowSeconds float64    `json:"windowSeconds"`

	TotalRequests       int64 `json:"totalRequests"`
	SuccessRequests     int64 `json:"successRequests"`
	ClientErrorRequests int64 `json:"clientErrorRequests"`
	ServerErrorRequests int64 `json:"serverErrorRequests"`
	OtherRequests       int64 `json:"otherRequests"`
	SlowRequests        int64 `json:"slowRequests"`
	RejectedRecords     int64 `json:"rejectedRecords"`
	ClampedFields       int64 `json:"clampedFields"`

	// Rates are percentages in [0, 100].
	SuccessRate     float64 `json:"successRate"`
	ErrorRate       float64 `json:"errorRate"`
	ClientErrorRate float64 `json:"clientErrorRate"`
	ServerErrorRate float64 `json:"serverErrorRate"`
	SlowRate        float64 `json:"slowRate"`
	QPS             float64 `json:"qps"`
	RequestRate     float64 `json:"requestRate"`

	DurationAvg float64 `json:"durationAvg"`
	DurationMax float64 `json:"durationMax"`
	DurationP50 float64 `json:"durationP50"`
	DurationP90 float64 `json:"durationP90"`
	DurationP95 float64 `json:"durationP95"`
	DurationP99 float64 `json:"durationP99"`

	UpstreamResponseAvg float64 `json:"upstreamResponseAvg"`
	UpstreamResponseMax float64 `json:"upstreamResponseMax"`
	UpstreamResponseP50 float64 `json:"upstreamResponseP50"`
	UpstreamResponseP90 float64 `json:"upstreamResponseP90"`
	UpstreamResponseP95 float64 `json:"upstreamResponseP95"`
	UpstreamResponseP99 float64 `json:"upstreamResponseP99"`

	UpstreamHeaderAvg float64 `json:"upstreamHeaderAvg"`
	UpstreamHeaderMax float64 `json:"upstreamHeaderMax"`
	UpstreamHeaderP50 float64 `json:"upstreamHeaderP50"`
	UpstreamHeaderP90 float64 `json:"upstreamHeaderP90"`
	UpstreamHeaderP95 float64 `json:"upstreamHeaderP95"`
	UpstreamHeaderP99 float64 `json:"upstreamHeaderP99"`

	UpstreamConnectAvg float64 `json:"upstreamConnectAvg"`
	UpstreamConnectMax float64 `json:"upstreamConnectMax"`
	UpstreamConnectP50 float64 `json:"upstreamConnectP50"`
	UpstreamConnectP90 float64 `json:"upstreamConnectP90"`
	UpstreamConnectP95 float64 `json:"upstreamConnectP95"`
	UpstreamConnectP99 float64 `json:"upstreamConnectP99"`

	TotalResponseBytes int64   `json:"totalResponseBytes"`
	AvgResponseBytes   float64 `json:"avgResponseBytes"`
	BytesPerSecond     float64 `json:"bytesPerSecond"`

	UniqueClients int64  `json:"uniqueClients"`
	TopUserAgent  string `json:"topUserAgent"`

	NewConnections        int64   `json:"newConnections"`
	ConcurrentConnections int64   `json:"concurrentConnections"`
	ActiveConnections     int64   `json:"activeConnections"`
	ConnectionReuseRate   float64 `json:"connectionReuseRate"`

	AnomalyScore    float64  `json:"anomalyScore"`
	AnomalySeverity string   `json:"anomalySeverity"`
	AnomalyFlags    []string `json:"anomalyFlags"`
}

func (s *WindowSummary) Key() BucketKey {
	return BucketKey{Resolution: s.Resolution, BucketStart: s.WindowStart}
}

func (s *WindowSummary) IsAnomalous() bool {
	return len(s.AnomalyFlags) > 0
}
