package models

import "time"

// RequestRecord is one normalized HTTP request-log record.
// Durations are in seconds.
type RequestRecord struct {
	ArrivalTime          time.Time `json:"arrivalTime"`
	CompletionTime       time.Time `json:"completionTime"`
	StatusCode           int       `json:"statusCode"`
	TotalDuration        float64   `json:"totalDuration"`
	UpstreamResponseTime float64   `json:"upstreamResponseTime"`
	UpstreamHeaderTime   float64   `json:"upstreamHeaderTime"`
	UpstreamConnectTime  float64   `json:"upstreamConnectTime"`
	ResponseSizeBytes    int64     `json:"responseSizeBytes"`
	ClientID             string    `json:"clientId"`
	URI                  string    `json:"uri"`
	UserAgent            string    `json:"userAgent,omitempty"`
}

type StatusClass string

const (
	StatusSuccess     StatusClass = "success"
	StatusClientError StatusClass = "client_error"
	StatusServerError StatusClass = "server_error"
	StatusOther       StatusClass = "other"
)

// StatusClass groups 2xx/3xx as success, 4xx and 5xx as errors.
func (r *RequestRecord) StatusClass() StatusClass {
	switch {
	case r.StatusCode >= 200 && r.StatusCode < 400:
		return StatusSuccess
	case r.StatusCode >= 400 && r.StatusCode < 500:
		return StatusClientError
	case r.StatusCode >= 500 && r.StatusCode < 600:
		return StatusServerError
	default:
		return StatusOther
	}
}

type RejectReason string

const (
	RejectCompletionBeforeArrival RejectReason = "completion_before_arrival"
	RejectInvalidTimestamp        RejectReason = "invalid_timestamp"
	RejectNonFiniteValue          RejectReason = "non_finite_value"
	RejectNegativeSize            RejectReason = "negative_size"
	RejectSpanTooLong             RejectReason = "span_too_long"
	RejectTimingOutOfRange        RejectReason = "timing_out_of_range"
	RejectMalformedRecord         RejectReason = "malformed_record"
)
