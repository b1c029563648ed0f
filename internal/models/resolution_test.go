package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolution_Duration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resolution Resolution
		expected   time.Duration
	}{
		{name: "day", resolution: ResolutionDay, expected: 24 * time.Hour},
		{name: "hour", resolution: ResolutionHour, expected: time.Hour},
		{name: "minute", resolution: ResolutionMinute, expected: time.Minute},
		{name: "second", resolution: ResolutionSecond, expected: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.resolution.Duration())
			assert.Equal(t, tt.expected.Seconds(), tt.resolution.Seconds())
		})
	}
}

func TestResolution_Duration_Invalid(t *testing.T) {
	t.Parallel()

	invalid := Resolution("fortnight")
	assert.Panics(t, func() {
		invalid.Duration()
	}, "Duration should panic on invalid Resolution")
}

func TestParseResolution(t *testing.T) {
	t.Parallel()

	for _, r := range AllResolutions() {
		parsed, err := ParseResolution(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseResolution("week")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "week")
}

func TestResolution_FormatWindowStart(t *testing.T) {
	t.Parallel()

	testTime := time.Date(2025, 12, 28, 18, 3, 45, 123456789, time.UTC)

	tests := []struct {
		name       string
		resolution Resolution
		input      time.Time
		expected   string
	}{
		{name: "day window truncates to day", resolution: ResolutionDay, input: testTime, expected: "20251228Z"},
		{name: "hour window truncates to hour", resolution: ResolutionHour, input: testTime, expected: "20251228T18Z"},
		{name: "minute window truncates to minute", resolution: ResolutionMinute, input: testTime, expected: "20251228T1803Z"},
		{name: "second window truncates to second", resolution: ResolutionSecond, input: testTime, expected: "20251228T180345Z"},
		{
			name:       "minute window with different timezone",
			resolution: ResolutionMinute,
			input:      time.Date(2025, 12, 28, 18, 3, 45, 0, time.FixedZone("EST", -5*3600)),
			expected:   "20251228T2303Z",
		},
		{
			name:       "day window rolls over in UTC",
			resolution: ResolutionDay,
			input:      time.Date(2025, 12, 28, 22, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			expected:   "20251229Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.resolution.FormatWindowStart(tt.input))
		})
	}
}

func TestResolution_BucketID(t *testing.T) {
	t.Parallel()

	input := time.Date(2025, 12, 28, 18, 3, 45, 0, time.UTC)

	assert.Equal(t, "day-28", ResolutionDay.BucketID(input))
	assert.Equal(t, "hour-18", ResolutionHour.BucketID(input))
	assert.Equal(t, "minute-03", ResolutionMinute.BucketID(input))
	assert.Equal(t, "second-45", ResolutionSecond.BucketID(input))
}

func TestBucketKey_NewBucketKey(t *testing.T) {
	t.Parallel()

	completion := time.Date(2025, 12, 28, 18, 3, 45, 500, time.UTC)

	key := NewBucketKey(ResolutionMinute, completion)
	assert.Equal(t, time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC), key.BucketStart)
	assert.Equal(t, time.Date(2025, 12, 28, 18, 4, 0, 0, time.UTC), key.End())
	assert.Equal(t, key.End(), key.Next().BucketStart)
	assert.Equal(t, "minute/20251228T1803Z", key.String())
}

func TestBucketKey_Before(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 12, 28, 18, 0, 0, 0, time.UTC)
	hour := NewBucketKey(ResolutionHour, t0)
	minute := NewBucketKey(ResolutionMinute, t0)
	laterMinute := NewBucketKey(ResolutionMinute, t0.Add(time.Minute))

	assert.True(t, hour.Before(minute), "coarser resolution sorts first")
	assert.False(t, minute.Before(hour))
	assert.True(t, minute.Before(laterMinute))
	assert.False(t, laterMinute.Before(minute))
}

func TestRequestRecord_StatusClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code     int
		expected StatusClass
	}{
		{200, StatusSuccess},
		{304, StatusSuccess},
		{404, StatusClientError},
		{499, StatusClientError},
		{500, StatusServerError},
		{503, StatusServerError},
		{101, StatusOther},
		{0, StatusOther},
		{600, StatusOther},
	}

	for _, tt := range tests {
		r := &RequestRecord{StatusCode: tt.code}
		assert.Equal(t, tt.expected, r.StatusClass(), "status %d", tt.code)
	}
}
