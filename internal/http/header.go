package http

import (
	"net/http"
	"strings"
)

const (
	headerRequestID      = "x-request-id"
	headerContentType    = "content-type"
	headerIdempotencyKey = "idempotency-key"
)

const (
	paramRunID      = "runID"
	queryResolution = "resolution"
)

func requestID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerRequestID))
}

func setRequestID(r *http.Request, requestID string) {
	r.Header.Set(headerRequestID, requestID)
}

func contentType(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerContentType))
}

// idempotencyKey doubles as the run id, so retrying a POST /runs cannot aggregate the same input twice.
func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
}
