package ingestors

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"traffic-rollup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	t.Parallel()

	arrival := time.Date(2025, 12, 28, 18, 3, 0, 0, time.UTC)

	tests := []struct {
		name       string
		line       string
		wantReason models.RejectReason
		check      func(t *testing.T, record models.RequestRecord)
	}{
		{
			name: "full record with RFC 3339 timestamps",
			line: `{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"2025-12-28T18:03:00.250Z","status":200,` +
				`"request_time":0.25,"upstream_response_time":0.2,"upstream_header_time":0.15,"upstream_connect_time":0.01,` +
				`"body_bytes_sent":512,"remote_addr":"10.0.0.1","uri":"/api/orders","user_agent":"curl/8.5.0"}`,
			check: func(t *testing.T, record models.RequestRecord) {
				assert.Equal(t, arrival, record.ArrivalTime)
				assert.Equal(t, arrival.Add(250*time.Millisecond), record.CompletionTime)
				assert.Equal(t, 200, record.StatusCode)
				assert.Equal(t, 0.25, record.TotalDuration)
				assert.Equal(t, 0.2, record.UpstreamResponseTime)
				assert.Equal(t, 0.15, record.UpstreamHeaderTime)
				assert.Equal(t, 0.01, record.UpstreamConnectTime)
				assert.Equal(t, int64(512), record.ResponseSizeBytes)
				assert.Equal(t, "10.0.0.1", record.ClientID)
				assert.Equal(t, "/api/orders", record.URI)
				assert.Equal(t, "curl/8.5.0", record.UserAgent)
			},
		},
		{
			name: "epoch seconds and offset timestamps",
			line: `{"arrival_time":1766944980,"completion_time":"2025-12-28T19:03:01.5+01:00","status":"404"}`,
			check: func(t *testing.T, record models.RequestRecord) {
				assert.Equal(t, arrival, record.ArrivalTime)
				assert.Equal(t, arrival.Add(1500*time.Millisecond), record.CompletionTime)
				assert.Equal(t, time.UTC, record.CompletionTime.Location())
				assert.Equal(t, 404, record.StatusCode)
			},
		},
		{
			name: "missing upstream reads as zero",
			line: `{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"2025-12-28T18:03:01Z","status":502,` +
				`"upstream_response_time":"-","body_bytes_sent":"-"}`,
			check: func(t *testing.T, record models.RequestRecord) {
				assert.Zero(t, record.UpstreamResponseTime)
				assert.Zero(t, record.UpstreamConnectTime)
				assert.Zero(t, record.ResponseSizeBytes)
			},
		},
		{
			name: "NaN string is left for the validator",
			line: `{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"2025-12-28T18:03:01Z","status":200,"request_time":"NaN"}`,
			check: func(t *testing.T, record models.RequestRecord) {
				assert.True(t, math.IsNaN(record.TotalDuration))
			},
		},
		{
			name:       "not json",
			line:       `arrival_time=2025-12-28T18:03:00Z status=200`,
			wantReason: models.RejectMalformedRecord,
		},
		{
			name:       "json array",
			line:       `[1,2,3]`,
			wantReason: models.RejectMalformedRecord,
		},
		{
			name:       "missing arrival",
			line:       `{"completion_time":"2025-12-28T18:03:01Z","status":200}`,
			wantReason: models.RejectInvalidTimestamp,
		},
		{
			name:       "unparseable completion",
			line:       `{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"yesterday","status":200}`,
			wantReason: models.RejectInvalidTimestamp,
		},
		{
			name:       "status is not a number",
			line:       `{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"2025-12-28T18:03:01Z","status":"ok"}`,
			wantReason: models.RejectMalformedRecord,
		},
		{
			name:       "timing is an object",
			line:       `{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"2025-12-28T18:03:01Z","status":200,"request_time":{}}`,
			wantReason: models.RejectMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record, reason := DecodeRecord([]byte(tt.line))
			assert.Equal(t, tt.wantReason, reason)
			if tt.check != nil {
				tt.check(t, record)
			}
		})
	}
}

func TestRecordDecoder_Next(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"arrival_time":"2025-12-28T18:03:00Z","completion_time":"2025-12-28T18:03:01Z","status":200}`,
		``,
		`   `,
		`{broken`,
		`{"arrival_time":"2025-12-28T18:03:02Z","completion_time":"2025-12-28T18:03:03Z","status":500}`,
	}, "\n")
	decoder := NewRecordDecoder(strings.NewReader(input), 0)

	record, reason, err := decoder.Next()
	require.NoError(t, err)
	assert.Empty(t, reason)
	assert.Equal(t, 200, record.StatusCode)

	_, reason, err = decoder.Next()
	require.NoError(t, err)
	assert.Equal(t, models.RejectMalformedRecord, reason)
	assert.Equal(t, 4, decoder.Line())

	record, reason, err = decoder.Next()
	require.NoError(t, err)
	assert.Empty(t, reason)
	assert.Equal(t, 500, record.StatusCode)

	_, _, err = decoder.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecordDecoder_LineTooLong(t *testing.T) {
	t.Parallel()

	line := `{"uri":"` + strings.Repeat("a", 256) + `"}`
	decoder := NewRecordDecoder(strings.NewReader(line), 64)

	_, _, err := decoder.Next()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
	assert.Contains(t, err.Error(), "line 1")
}
