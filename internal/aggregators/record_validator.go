package aggregators

import (
	"math"
	"time"

	"traffic-rollup/internal/models"
)

// fieldDescriptor describes one numeric record field. Validation dispatches on kind.
type fieldDescriptor struct {
	name  string
	kind  models.MetricKind
	value func(record *models.RequestRecord) float64
	// zero resets the field; only Timing fields are ever clamped.
	zero func(record *models.RequestRecord)
}

var recordFields = []fieldDescriptor{
	{
		name:  "request_time",
		kind:  models.Timing,
		value: func(r *models.RequestRecord) float64 { return r.TotalDuration },
		zero:  func(r *models.RequestRecord) { r.TotalDuration = 0 },
	},
	{
		name:  "upstream_response_time",
		kind:  models.Timing,
		value: func(r *models.RequestRecord) float64 { return r.UpstreamResponseTime },
		zero:  func(r *models.RequestRecord) { r.UpstreamResponseTime = 0 },
	},
	{
		name:  "upstream_header_time",
		kind:  models.Timing,
		value: func(r *models.RequestRecord) float64 { return r.UpstreamHeaderTime },
		zero:  func(r *models.RequestRecord) { r.UpstreamHeaderTime = 0 },
	},
	{
		name:  "upstream_connect_time",
		kind:  models.Timing,
		value: func(r *models.RequestRecord) float64 { return r.UpstreamConnectTime },
		zero:  func(r *models.RequestRecord) { r.UpstreamConnectTime = 0 },
	},
	{
		name:  "body_bytes_sent",
		kind:  models.Size,
		value: func(r *models.RequestRecord) float64 { return float64(r.ResponseSizeBytes) },
	},
	{
		name:  "status",
		kind:  models.Count,
		value: func(r *models.RequestRecord) float64 { return float64(r.StatusCode) },
	},
}

// Verdict is the outcome of validating one record.
type Verdict struct {
	// Reason is empty when the record is accepted.
	Reason models.RejectReason
	// Clamped lists the fields that were reset to zero.
	Clamped []string
}

func (v Verdict) Accepted() bool { return v.Reason == "" }

// defaultMaxTiming bounds timing fields when no request span limit is configured.
const defaultMaxTiming = 24 * time.Hour

// RecordValidator applies data-quality rules before a record reaches any window.
type RecordValidator struct {
	maxSpan time.Duration
	// maxTiming is the largest timing a request can report, in seconds.
	maxTiming float64
}

func NewRecordValidator(maxSpan time.Duration) *RecordValidator {
	maxTiming := defaultMaxTiming
	if maxSpan > 0 {
		maxTiming = maxSpan
	}
	return &RecordValidator{maxSpan: maxSpan, maxTiming: maxTiming.Seconds()}
}

// Validate checks record and clamps negative timings in place.
// A rejected record is left untouched.
func (v *RecordValidator) Validate(record *models.RequestRecord) Verdict {
	if record.ArrivalTime.IsZero() || record.CompletionTime.IsZero() {
		return v.reject(models.RejectInvalidTimestamp)
	}
	if record.CompletionTime.Before(record.ArrivalTime) {
		return v.reject(models.RejectCompletionBeforeArrival)
	}
	if v.maxSpan > 0 && record.CompletionTime.Sub(record.ArrivalTime) > v.maxSpan {
		return v.reject(models.RejectSpanTooLong)
	}

	for _, field := range recordFields {
		value := field.value(record)
		switch field.kind {
		case models.Timing:
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return v.reject(models.RejectNonFiniteValue)
			}
			// No request can take longer than the longest allowed span.
			if value > v.maxTiming {
				return v.reject(models.RejectTimingOutOfRange)
			}
		case models.Size:
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return v.reject(models.RejectNonFiniteValue)
			}
			if value < 0 {
				return v.reject(models.RejectNegativeSize)
			}
		case models.Count:
			// Out-of-range status codes are classified as "other", not rejected.
		}
	}

	var verdict Verdict
	for _, field := range recordFields {
		if field.kind == models.Timing && field.value(record) < 0 {
			field.zero(record)
			verdict.Clamped = append(verdict.Clamped, field.name)
			metricFieldClampedTotal.WithLabelValues(field.name).Inc()
		}
	}
	return verdict
}

func (v *RecordValidator) reject(reason models.RejectReason) Verdict {
	metricRecordRejectedTotal.WithLabelValues(string(reason)).Inc()
	return Verdict{Reason: reason}
}

// CountRejection records a rejection decided outside the validator, e.g. by a decoder.
func CountRejection(reason models.RejectReason) {
	metricRecordRejectedTotal.WithLabelValues(string(reason)).Inc()
}
