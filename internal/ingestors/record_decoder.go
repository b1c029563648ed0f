package ingestors

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"traffic-rollup/internal/models"

	"github.com/tidwall/gjson"
)

// NDJSON keys of one normalized access-log line.
const (
	keyArrivalTime          = "arrival_time"
	keyCompletionTime       = "completion_time"
	keyStatus               = "status"
	keyRequestTime          = "request_time"
	keyUpstreamResponseTime = "upstream_response_time"
	keyUpstreamHeaderTime   = "upstream_header_time"
	keyUpstreamConnectTime  = "upstream_connect_time"
	keyBodyBytesSent        = "body_bytes_sent"
	keyRemoteAddr           = "remote_addr"
	keyURI                  = "uri"
	keyUserAgent            = "user_agent"
)

const defaultMaxLineBytes = 64 * 1024

var (
	errMalformed        = errors.New(string(models.RejectMalformedRecord))
	errInvalidTimestamp = errors.New(string(models.RejectInvalidTimestamp))
)

// RecordDecoder reads NDJSON records one line at a time. Blank lines are skipped.
type RecordDecoder struct {
	scanner *bufio.Scanner
	line    int
}

func NewRecordDecoder(r io.Reader, maxLineBytes int) *RecordDecoder {
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(maxLineBytes, 64*1024)), maxLineBytes)
	return &RecordDecoder{scanner: scanner}
}

// Next returns the next record. A line that cannot be turned into a record yields a non-empty
// reject reason and a zero record; decoding continues with the following line.
// Next returns io.EOF once the input is exhausted.
func (d *RecordDecoder) Next() (models.RequestRecord, models.RejectReason, error) {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		record, reason := DecodeRecord(line)
		return record, reason, nil
	}
	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return models.RequestRecord{}, "", fmt.Errorf("line %d: %w", d.line+1, err)
		}
		return models.RequestRecord{}, "", err
	}
	return models.RequestRecord{}, "", io.EOF
}

// Line is the number of the last line read, starting at 1.
func (d *RecordDecoder) Line() int {
	return d.line
}

// DecodeRecord parses one NDJSON line. The returned reason is empty when the line decoded.
func DecodeRecord(line []byte) (models.RequestRecord, models.RejectReason) {
	if !gjson.ValidBytes(line) {
		return models.RequestRecord{}, models.RejectMalformedRecord
	}
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return models.RequestRecord{}, models.RejectMalformedRecord
	}

	record, err := decodeFields(doc)
	switch {
	case errors.Is(err, errInvalidTimestamp):
		return models.RequestRecord{}, models.RejectInvalidTimestamp
	case err != nil:
		return models.RequestRecord{}, models.RejectMalformedRecord
	}
	return record, ""
}

func decodeFields(doc gjson.Result) (models.RequestRecord, error) {
	var (
		record models.RequestRecord
		err    error
	)

	fields := doc.GetMany(
		keyArrivalTime, keyCompletionTime, keyStatus, keyRequestTime, keyUpstreamResponseTime,
		keyUpstreamHeaderTime, keyUpstreamConnectTime, keyBodyBytesSent, keyRemoteAddr, keyURI, keyUserAgent,
	)

	if record.ArrivalTime, err = parseTimestamp(fields[0]); err != nil {
		return record, err
	}
	if record.CompletionTime, err = parseTimestamp(fields[1]); err != nil {
		return record, err
	}
	if record.StatusCode, err = parseStatus(fields[2]); err != nil {
		return record, err
	}
	if record.TotalDuration, err = parseSeconds(fields[3]); err != nil {
		return record, err
	}
	if record.UpstreamResponseTime, err = parseSeconds(fields[4]); err != nil {
		return record, err
	}
	if record.UpstreamHeaderTime, err = parseSeconds(fields[5]); err != nil {
		return record, err
	}
	if record.UpstreamConnectTime, err = parseSeconds(fields[6]); err != nil {
		return record, err
	}
	if record.ResponseSizeBytes, err = parseBytes(fields[7]); err != nil {
		return record, err
	}
	record.ClientID = strings.TrimSpace(fields[8].String())
	record.URI = strings.TrimSpace(fields[9].String())
	record.UserAgent = strings.TrimSpace(fields[10].String())
	return record, nil
}

// parseTimestamp accepts an RFC 3339 string or epoch seconds as a number.
func parseTimestamp(v gjson.Result) (time.Time, error) {
	switch v.Type {
	case gjson.String:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v.Str))
		if err != nil {
			return time.Time{}, errInvalidTimestamp
		}
		return t.UTC(), nil
	case gjson.Number:
		sec, frac := math.Modf(v.Num)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
	default:
		return time.Time{}, errInvalidTimestamp
	}
}

func parseStatus(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), nil
	case gjson.String:
		status, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, errMalformed
		}
		return status, nil
	default:
		return 0, errMalformed
	}
}

// parseSeconds reads a timing field. Missing values and "-" (no upstream) read as zero.
// Strings such as "NaN" parse and are left to the validator.
func parseSeconds(v gjson.Result) (float64, error) {
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" || s == "-" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errMalformed
		}
		return f, nil
	default:
		return 0, errMalformed
	}
}

func parseBytes(v gjson.Result) (int64, error) {
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return v.Int(), nil
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" || s == "-" {
			return 0, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errMalformed
		}
		return n, nil
	default:
		return 0, errMalformed
	}
}
