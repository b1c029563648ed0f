package aggregators

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"traffic-rollup/internal/anomalies"
	"traffic-rollup/internal/connections"
	"traffic-rollup/internal/models"
	"traffic-rollup/internal/sketches"

	"github.com/mileusna/useragent"
)

const (
	metricDuration         = "duration"
	metricUpstreamResponse = "upstream_response"
	metricUpstreamHeader   = "upstream_header"
	metricUpstreamConnect  = "upstream_connect"

	otherUserAgentFamily = "Other"
)

// AccumulatorConfig holds the tuning knobs shared by every window of a run.
type AccumulatorConfig struct {
	SlowThresholdSeconds float64
	QuantileCompression  int
	HLLPrecision         int
	ReservoirCapacity    int
	MaxUserAgentFamilies int
}

// WindowAccumulator is the mutable state of one (resolution, bucket) window while a run is ingesting.
// It is owned by a single shard and is not safe for concurrent use.
type WindowAccumulator struct {
	key    models.BucketKey
	config AccumulatorConfig

	total       int64
	success     int64
	clientError int64
	serverError int64
	other       int64
	slow        int64
	rejected    int64
	clamped     int64
	bytes       int64

	duration         *sketches.QuantileSketch
	upstreamResponse *sketches.QuantileSketch
	upstreamHeader   *sketches.QuantileSketch
	upstreamConnect  *sketches.QuantileSketch
	clients          *sketches.CardinalitySketch
	samples          *sketches.Reservoir[models.RequestRecord]
	userAgents       map[string]int64

	connections connections.Stats
	finalized   bool
}

func NewWindowAccumulator(key models.BucketKey, config AccumulatorConfig, rng *rand.Rand) (*WindowAccumulator, error) {
	clients, err := sketches.NewCardinalitySketch(config.HLLPrecision)
	if err != nil {
		return nil, err
	}
	return &WindowAccumulator{
		key:              key,
		config:           config,
		duration:         sketches.NewQuantileSketch(metricDuration, config.QuantileCompression),
		upstreamResponse: sketches.NewQuantileSketch(metricUpstreamResponse, config.QuantileCompression),
		upstreamHeader:   sketches.NewQuantileSketch(metricUpstreamHeader, config.QuantileCompression),
		upstreamConnect:  sketches.NewQuantileSketch(metricUpstreamConnect, config.QuantileCompression),
		clients:          clients,
		samples:          sketches.NewReservoir[models.RequestRecord](config.ReservoirCapacity, rng),
		userAgents:       make(map[string]int64),
	}, nil
}

func (a *WindowAccumulator) Key() models.BucketKey { return a.key }

func (a *WindowAccumulator) Total() int64 { return a.total }

// Update folds one accepted record into the window.
func (a *WindowAccumulator) Update(record *models.RequestRecord) {
	a.mustBeOpen("Update")

	a.total++
	switch record.StatusClass() {
	case models.StatusSuccess:
		a.success++
	case models.StatusClientError:
		a.clientError++
	case models.StatusServerError:
		a.serverError++
	default:
		a.other++
	}
	if record.TotalDuration > a.config.SlowThresholdSeconds {
		a.slow++
	}
	a.bytes += record.ResponseSizeBytes

	a.duration.Add(record.TotalDuration)
	a.upstreamResponse.Add(record.UpstreamResponseTime)
	a.upstreamHeader.Add(record.UpstreamHeaderTime)
	a.upstreamConnect.Add(record.UpstreamConnectTime)
	a.clients.Add(record.ClientID)
	a.samples.Add(*record)

	if record.UserAgent != "" {
		a.countUserAgent(userAgentFamily(record.UserAgent), 1)
	}
}

func (a *WindowAccumulator) RecordRejection(reason models.RejectReason) {
	a.mustBeOpen("RecordRejection")
	a.rejected++
}

func (a *WindowAccumulator) RecordClamp(fields int) {
	a.mustBeOpen("RecordClamp")
	a.clamped += int64(fields)
}

// AttachConnections sets the connection statistics computed for this window's bucket.
// It replaces any stats attached earlier.
func (a *WindowAccumulator) AttachConnections(stats connections.Stats) {
	a.mustBeOpen("AttachConnections")
	a.connections = stats
}

// Merge folds other into a. Both must describe the same window.
// Connection stats are not merged: they come from the run-wide tally and are attached
// with AttachConnections once every shard has been merged.
func (a *WindowAccumulator) Merge(other *WindowAccumulator) error {
	a.mustBeOpen("Merge")
	other.mustBeOpen("Merge")

	if a.key.Resolution != other.key.Resolution {
		return errInternalWindowMergeFailed(fmt.Errorf("resolution mismatch: acc=%q, other=%q", a.key.Resolution, other.key.Resolution))
	}
	if !a.key.BucketStart.Equal(other.key.BucketStart) {
		return errInternalWindowMergeFailed(fmt.Errorf("bucketStart mismatch: acc=%v, other=%v", a.key.BucketStart, other.key.BucketStart))
	}

	if err := a.duration.Merge(other.duration); err != nil {
		return errInternalWindowMergeFailed(err)
	}
	if err := a.upstreamResponse.Merge(other.upstreamResponse); err != nil {
		return errInternalWindowMergeFailed(err)
	}
	if err := a.upstreamHeader.Merge(other.upstreamHeader); err != nil {
		return errInternalWindowMergeFailed(err)
	}
	if err := a.upstreamConnect.Merge(other.upstreamConnect); err != nil {
		return errInternalWindowMergeFailed(err)
	}
	if err := a.clients.Merge(other.clients); err != nil {
		return errInternalWindowMergeFailed(err)
	}
	if err := a.samples.Merge(other.samples); err != nil {
		return errInternalWindowMergeFailed(err)
	}

	a.total += other.total
	a.success += other.success
	a.clientError += other.clientError
	a.serverError += other.serverError
	a.other += other.other
	a.slow += other.slow
	a.rejected += other.rejected
	a.clamped += other.clamped
	a.bytes += other.bytes

	for family, count := range other.userAgents {
		a.countUserAgent(family, count)
	}
	return nil
}

// Finalize produces the immutable summary of the window, scored against baseline.
// The caller records the summary into the baseline afterwards. A window without accepted
// requests (only rejections) is not scored. A second call panics with a UsageError.
func (a *WindowAccumulator) Finalize(detector *anomalies.Detector, baseline *anomalies.Baseline) *models.WindowSummary {
	a.mustBeOpen("Finalize")
	a.finalized = true

	seconds := a.key.Resolution.Seconds()
	summary := &models.WindowSummary{
		Resolution:    a.key.Resolution,
		BucketID:      a.key.Resolution.BucketID(a.key.BucketStart),
		WindowStart:   a.key.BucketStart,
		WindowEnd:     a.key.End(),
		WindowSeconds: seconds,

		TotalRequests:       a.total,
		SuccessRequests:     a.success,
		ClientErrorRequests: a.clientError,
		ServerErrorRequests: a.serverError,
		OtherRequests:       a.other,
		SlowRequests:        a.slow,
		RejectedRecords:     a.rejected,
		ClampedFields:       a.clamped,

		SuccessRate:     percent(a.success, a.total),
		ErrorRate:       percent(a.clientError+a.serverError, a.total),
		ClientErrorRate: percent(a.clientError, a.total),
		ServerErrorRate: percent(a.serverError, a.total),
		SlowRate:        percent(a.slow, a.total),
		QPS:             float64(a.success) / seconds,
		RequestRate:     float64(a.total) / seconds,

		DurationAvg: a.duration.Mean(),
		DurationMax: a.duration.Max(),
		DurationP50: a.duration.Percentile(50),
		DurationP90: a.duration.Percentile(90),
		DurationP95: a.duration.Percentile(95),
		DurationP99: a.duration.Percentile(99),

		UpstreamResponseAvg: a.upstreamResponse.Mean(),
		UpstreamResponseMax: a.upstreamResponse.Max(),
		UpstreamResponseP50: a.upstreamResponse.Percentile(50),
		UpstreamResponseP90: a.upstreamResponse.Percentile(90),
		UpstreamResponseP95: a.upstreamResponse.Percentile(95),
		UpstreamResponseP99: a.upstreamResponse.Percentile(99),

		UpstreamHeaderAvg: a.upstreamHeader.Mean(),
		UpstreamHeaderMax: a.upstreamHeader.Max(),
		UpstreamHeaderP50: a.upstreamHeader.Percentile(50),
		UpstreamHeaderP90: a.upstreamHeader.Percentile(90),
		UpstreamHeaderP95: a.upstreamHeader.Percentile(95),
		UpstreamHeaderP99: a.upstreamHeader.Percentile(99),

		UpstreamConnectAvg: a.upstreamConnect.Mean(),
		UpstreamConnectMax: a.upstreamConnect.Max(),
		UpstreamConnectP50: a.upstreamConnect.Percentile(50),
		UpstreamConnectP90: a.upstreamConnect.Percentile(90),
		UpstreamConnectP95: a.upstreamConnect.Percentile(95),
		UpstreamConnectP99: a.upstreamConnect.Percentile(99),

		TotalResponseBytes: a.bytes,
		AvgResponseBytes:   ratio(a.bytes, a.total),
		BytesPerSecond:     float64(a.bytes) / seconds,

		UniqueClients: a.clients.Cardinality(),
		TopUserAgent:  a.topUserAgent(),

		NewConnections:        a.connections.New,
		ConcurrentConnections: a.connections.Concurrent,
		ActiveConnections:     a.connections.Active,
		ConnectionReuseRate:   a.connections.ReuseRate,

		AnomalySeverity: string(anomalies.SeverityNone),
		AnomalyFlags:    []string{},
	}

	if detector != nil && a.total > 0 {
		result := detector.Score(anomalies.MetricsOf(summary), baseline)
		summary.AnomalyScore = result.Score
		summary.AnomalySeverity = string(result.Severity)
		summary.AnomalyFlags = append([]string{}, result.Flags...)
	}

	metricWindowFinalizedTotal.WithLabelValues(string(summary.Resolution), summary.BucketID).Inc()
	if summary.IsAnomalous() {
		metricWindowAnomalousTotal.WithLabelValues(string(summary.Resolution), summary.AnomalySeverity).Inc()
	}
	return summary
}

// Sample returns the records retained by the window's reservoir.
func (a *WindowAccumulator) Sample() models.WindowSample {
	return models.WindowSample{
		Key:     a.key,
		Seen:    a.samples.Seen(),
		Records: a.samples.Samples(),
	}
}

func (a *WindowAccumulator) mustBeOpen(op string) {
	if a.finalized {
		panic(&UsageError{Op: op, Reason: fmt.Sprintf("window %s already finalized", a.key)})
	}
}

// countUserAgent keeps at most MaxUserAgentFamilies distinct families; the rest fold into "Other".
func (a *WindowAccumulator) countUserAgent(family string, count int64) {
	if _, ok := a.userAgents[family]; !ok && len(a.userAgents) >= a.config.MaxUserAgentFamilies {
		family = otherUserAgentFamily
	}
	a.userAgents[family] += count
}

func (a *WindowAccumulator) topUserAgent() string {
	families := make([]string, 0, len(a.userAgents))
	for family := range a.userAgents {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool {
		if a.userAgents[families[i]] != a.userAgents[families[j]] {
			return a.userAgents[families[i]] > a.userAgents[families[j]]
		}
		return families[i] < families[j]
	})
	if len(families) == 0 {
		return ""
	}
	return families[0]
}

// userAgentFamily parses the browser or client family, or returns the original string if parsing fails.
func userAgentFamily(ua string) string {
	parsed := useragent.Parse(ua)
	if parsed.Name != "" {
		return parsed.Name
	}
	return ua
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
