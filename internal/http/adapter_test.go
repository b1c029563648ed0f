package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"traffic-rollup/internal/shared/svcerrors"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlingAdapter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		err              error
		expectedStatus   int
		expectedCategory string
		expectedCode     string
		expectedMessage  string
	}{
		{
			name:             "InvalidArgument error",
			err:              svcerrors.NewInvalidArgumentError("RUN_1000", "test validation error", nil),
			expectedStatus:   http.StatusBadRequest,
			expectedCategory: "invalid_argument",
			expectedCode:     "RUN_1000",
			expectedMessage:  "test validation error",
		},
		{
			name:             "Internal error",
			err:              svcerrors.NewInternalError("RUN_9000", nil),
			expectedStatus:   http.StatusInternalServerError,
			expectedCategory: "internal",
			expectedCode:     "RUN_9000",
			expectedMessage:  "internal server error",
		},
		{
			name:             "Non-ServiceError",
			err:              assert.AnError,
			expectedStatus:   http.StatusInternalServerError,
			expectedCategory: "internal",
			expectedCode:     "SYS_9001",
			expectedMessage:  "internal server error",
		},
		{
			name:             "NotFound error",
			err:              svcerrors.NewNotFoundError("QRY_1001", "run not found", nil),
			expectedStatus:   http.StatusNotFound,
			expectedCategory: "not_found",
			expectedCode:     "QRY_1001",
			expectedMessage:  "run not found",
		},
		{
			name:             "ResourceConflict error",
			err:              svcerrors.NewResourceConflictError("RUN_1001", "run already exists", nil),
			expectedStatus:   http.StatusConflict,
			expectedCategory: "resource_conflict",
			expectedCode:     "RUN_1001",
			expectedMessage:  "run already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := errorHandlingAdapter(&testHandler{
				handleFunc: func(w http.ResponseWriter, r *http.Request) error {
					return tt.err
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			reqID := "test-request-id-" + tt.name
			req.Header.Set(headerRequestID, reqID)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var errorResponse ErrorResponse
			err := json.Unmarshal(rr.Body.Bytes(), &errorResponse)
			require.NoError(t, err)

			assert.Equal(t, reqID, errorResponse.RequestID)
			assert.Equal(t, tt.expectedCategory, errorResponse.ErrorCategory)
			assert.Equal(t, tt.expectedCode, errorResponse.ErrorCode)
			assert.Equal(t, tt.expectedMessage, errorResponse.ErrorDescription)
		})
	}
}

func TestErrorHandlingAdapter_NoError(t *testing.T) {
	t.Parallel()

	handler := errorHandlingAdapter(&testHandler{
		handleFunc: func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("success"))
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", rr.Body.String())
}

func TestWriteErrorResponse_SetsServiceErrorOnAppWriter(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/runs/missing", nil)
	rr := httptest.NewRecorder()
	appWriter := newAppResponseWriter(rr, 1)

	writeErrorResponse(appWriter, req, svcerrors.NewNotFoundError("QRY_1001", "run not found", nil))

	assert.Equal(t, "QRY_1001", appWriter.ErrorCode())
	assert.Equal(t, http.StatusNotFound, appWriter.Status())
}

func TestWriteErrorResponse_RunID(t *testing.T) {
	t.Parallel()

	svcErr := svcerrors.NewNotFoundError("QRY_1001", "run not found", nil)

	t.Run("from path parameter", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/runs/run-42/summaries", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(paramRunID, "run-42")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rr := httptest.NewRecorder()

		writeErrorResponse(rr, req, svcErr)

		var errorResponse ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errorResponse))
		assert.Equal(t, "run-42", errorResponse.RunID)
	})

	t.Run("from idempotency key", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		req.Header.Set(headerIdempotencyKey, " run-7 ")
		rr := httptest.NewRecorder()

		writeErrorResponse(rr, req, svcerrors.NewResourceConflictError("RUN_1001", "run already exists", nil))

		var errorResponse ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errorResponse))
		assert.Equal(t, "run-7", errorResponse.RunID)
	})

	t.Run("omitted when no run is addressed", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		rr := httptest.NewRecorder()

		writeErrorResponse(rr, req, svcerrors.NewInvalidArgumentError("RUN_1000", "bad body", nil))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.NotContains(t, body, "runId")
	})
}

func TestErrorLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *svcerrors.ServiceError
		expected zerolog.Level
	}{
		{"internal", svcerrors.NewInternalError("RUN_9000", assert.AnError), zerolog.ErrorLevel},
		{"undefined", svcerrors.NewInternalErrorUndefined(assert.AnError), zerolog.ErrorLevel},
		{"not found", svcerrors.NewNotFoundError("QRY_1001", "run not found", nil), zerolog.InfoLevel},
		{"conflict", svcerrors.NewResourceConflictError("RUN_1001", "run already exists", nil), zerolog.InfoLevel},
		{"invalid argument", svcerrors.NewInvalidArgumentError("QRY_1000", "bad resolution", nil), zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, errorLogLevel(tt.err))
		})
	}
}

// testHandler wraps a function to implement AppHttpHandler interface for testing
type testHandler struct {
	handleFunc func(w http.ResponseWriter, r *http.Request) error
}

func (h *testHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	return h.handleFunc(w, r)
}
