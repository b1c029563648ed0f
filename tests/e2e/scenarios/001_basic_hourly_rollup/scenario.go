package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ### Start - fixed configs (no change)
// These values define deterministic test data generation and must match expected results.
// DO NOT MODIFY: Changing these will break the test's deterministic behavior.
const (
	hours           = 4
	requestsPerHour = 3600 // one request per second
	clientCount     = 250
	slowEvery       = 50 // every 50th request takes 4s, above the 3s slow threshold
	errorEvery      = 40 // every 40th request is a 503
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"curl/7.88.1",
}

// ### End - fixed configs

type record struct {
	ArrivalTime          string  `json:"arrival_time"`
	CompletionTime       string  `json:"completion_time"`
	Status               int     `json:"status"`
	RequestTime          float64 `json:"request_time"`
	UpstreamResponseTime float64 `json:"upstream_response_time"`
	UpstreamConnectTime  float64 `json:"upstream_connect_time"`
	BodyBytesSent        int64   `json:"body_bytes_sent"`
	RemoteAddr           string  `json:"remote_addr"`
	URI                  string  `json:"uri"`
	UserAgent            string  `json:"user_agent"`
}

type summary struct {
	Resolution      string   `json:"resolution"`
	WindowStart     string   `json:"windowStart"`
	TotalRequests   int64    `json:"totalRequests"`
	ErrorRate       float64  `json:"errorRate"`
	SlowRequests    int64    `json:"slowRequests"`
	UniqueClients   int64    `json:"uniqueClients"`
	AnomalySeverity string   `json:"anomalySeverity"`
	AnomalyFlags    []string `json:"anomalyFlags"`
}

// main runs the e2e scenario: 001_basic_hourly_rollup
//
// It posts four hours of synthetic NDJSON traffic as one run to a live server and reads the
// hourly summaries back.
//
// What it tests:
//   - Run ingestion via POST /runs with an Idempotency-Key used as the run id
//   - A repeated POST with the same key returns 409 Conflict
//   - One malformed line is counted as rejected without failing the run
//   - GET /runs/{runID}/summaries?resolution=hour returns one window per hour, in order
//
// Expected results:
//   - 4 hourly windows (18:00 .. 21:00 UTC on 2025-12-28), each with 3600 requests
//   - error rate 2.5% and 72 slow requests per hour
//   - about 250 unique clients per hour
//   - stats.rejected.malformed_record == 1
func main() {
	baseURL := "http://localhost:8080"
	runID := fmt.Sprintf("e2e-hourly-%d", time.Now().Unix())
	start := time.Date(2025, 12, 28, 18, 0, 0, 0, time.UTC)

	fmt.Println("Starting e2e scenario: 001_basic_hourly_rollup")
	fmt.Printf("BASE_URL: %s\n", baseURL)
	fmt.Printf("RUN_ID: %s\n", runID)
	fmt.Println()

	body, err := generateBody(start)
	if err != nil {
		fail("failed to generate body: %v", err)
	}
	fmt.Printf("Generated %d bytes of NDJSON\n", len(body))

	status, response, err := postRun(baseURL, runID, body)
	if err != nil {
		fail("POST /runs failed: %v", err)
	}
	if status != http.StatusCreated {
		fail("POST /runs: expected 201, got %d: %s", status, response)
	}
	fmt.Printf("POST /runs -> %d %s\n", status, response)

	var created struct {
		Stats struct {
			Rejected map[string]int64 `json:"rejected"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(response, &created); err != nil {
		fail("failed to decode run response: %v", err)
	}
	if got := created.Stats.Rejected["malformed_record"]; got != 1 {
		fail("expected 1 malformed record, got %d", got)
	}

	status, response, err = postRun(baseURL, runID, body)
	if err != nil {
		fail("repeated POST /runs failed: %v", err)
	}
	if status != http.StatusConflict {
		fail("repeated POST /runs: expected 409, got %d: %s", status, response)
	}
	fmt.Printf("repeated POST /runs -> %d\n", status)

	summaries, err := getHourlySummaries(baseURL, runID)
	if err != nil {
		fail("GET summaries failed: %v", err)
	}
	if len(summaries) != hours {
		fail("expected %d hourly summaries, got %d", hours, len(summaries))
	}
	for i, s := range summaries {
		wantStart := start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		if s.WindowStart != wantStart {
			fail("summary %d: expected window start %s, got %s", i, wantStart, s.WindowStart)
		}
		if s.TotalRequests != requestsPerHour {
			fail("summary %d: expected %d requests, got %d", i, requestsPerHour, s.TotalRequests)
		}
		if s.SlowRequests != requestsPerHour/slowEvery {
			fail("summary %d: expected %d slow requests, got %d", i, requestsPerHour/slowEvery, s.SlowRequests)
		}
		fmt.Printf("  %s requests=%d errorRate=%.2f%% slow=%d uniqueClients=%d severity=%s\n",
			s.WindowStart, s.TotalRequests, s.ErrorRate, s.SlowRequests, s.UniqueClients, s.AnomalySeverity)
	}

	fmt.Println()
	fmt.Println("Scenario passed")
}

// generateBody lays requests out one per second. Completion times stay inside the hour of
// arrival so each hour receives exactly requestsPerHour records.
func generateBody(start time.Time) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)

	for i := 0; i < hours*requestsPerHour; i++ {
		arrival := start.Add(time.Duration(i) * time.Second)
		duration := 0.05 + float64(i%10)*0.01
		if i%slowEvery == 0 {
			duration = 4
		}
		completion := arrival.Add(time.Duration(duration * float64(time.Second)))
		if completion.Truncate(time.Hour) != arrival.Truncate(time.Hour) {
			arrival = arrival.Add(-time.Duration(duration * float64(time.Second)))
			completion = arrival.Add(time.Duration(duration * float64(time.Second)))
		}

		status := 200
		if i%errorEvery == 1 {
			status = 503
		}

		err := encoder.Encode(record{
			ArrivalTime:          arrival.Format(time.RFC3339Nano),
			CompletionTime:       completion.Format(time.RFC3339Nano),
			Status:               status,
			RequestTime:          duration,
			UpstreamResponseTime: duration * 0.9,
			UpstreamConnectTime:  0.002,
			BodyBytesSent:        int64(512 + i%7*128),
			RemoteAddr:           fmt.Sprintf("10.0.%d.%d", (i%clientCount)/250, (i%clientCount)%250),
			URI:                  "/api/items",
			UserAgent:            userAgents[i%len(userAgents)],
		})
		if err != nil {
			return nil, err
		}

		if i == requestsPerHour/2 {
			buf.WriteString("this line is not json\n")
		}
	}
	return buf.Bytes(), nil
}

func postRun(baseURL, runID string, body []byte) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/runs", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Idempotency-Key", runID)

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func getHourlySummaries(baseURL, runID string) ([]summary, error) {
	resp, err := http.Get(fmt.Sprintf("%s/runs/%s/summaries?resolution=hour", baseURL, runID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data)
	}

	var payload struct {
		Summaries []summary `json:"summaries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Summaries, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}
