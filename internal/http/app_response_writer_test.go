package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"traffic-rollup/internal/shared/svcerrors"

	"github.com/stretchr/testify/assert"
)

func TestNewAppResponseWriter(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	appWriter := newAppResponseWriter(rr, 1)

	assert.NotNil(t, appWriter)
	assert.Nil(t, appWriter.svcError)
	assert.Equal(t, "", appWriter.ErrorCode())
}

func TestAppResponseWriter_SetServiceError_And_ErrorCode(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	appWriter := newAppResponseWriter(rr, 1)

	// Initially no error
	assert.Equal(t, "", appWriter.ErrorCode())

	// Set InvalidArgument error
	svcErr1 := svcerrors.NewInvalidArgumentError("RUN_1000", "test error", nil)
	appWriter.SetServiceError(svcErr1)
	assert.Equal(t, svcErr1, appWriter.svcError)
	assert.Equal(t, "RUN_1000", appWriter.ErrorCode())

	// Set Internal error
	svcErr2 := svcerrors.NewInternalError("RUN_9000", nil)
	appWriter.SetServiceError(svcErr2)
	assert.Equal(t, svcErr2, appWriter.svcError)
	assert.Equal(t, "RUN_9000", appWriter.ErrorCode())

	// Clear error by setting nil
	appWriter.SetServiceError(nil)
	assert.Nil(t, appWriter.svcError)
	assert.Equal(t, "", appWriter.ErrorCode())
}

func TestAppResponseWriter_WrapsResponseWriter(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	appWriter := newAppResponseWriter(rr, 1)

	// Test WriteHeader and Status tracking
	appWriter.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, appWriter.Status())
	assert.Equal(t, http.StatusCreated, rr.Code)

	// Test Write and body content
	appWriter.Write([]byte("test body"))
	assert.Equal(t, "test body", rr.Body.String())
	assert.Equal(t, http.StatusCreated, appWriter.Status()) // Status should not change after Write

	// Test WriteHeader with different status
	rr2 := httptest.NewRecorder()
	appWriter2 := newAppResponseWriter(rr2, 1)
	appWriter2.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, appWriter2.Status())
	assert.Equal(t, http.StatusNotFound, rr2.Code)

	// Write should not change status
	appWriter2.Write([]byte("not found"))
	assert.Equal(t, http.StatusNotFound, appWriter2.Status())
	assert.Equal(t, http.StatusNotFound, rr2.Code)
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		writer          func() http.ResponseWriter
		wantStatus      int
		wantErrorCode   string
		wantServerFault bool
	}{
		{
			name:       "plain writer",
			writer:     func() http.ResponseWriter { return httptest.NewRecorder() },
			wantStatus: http.StatusOK,
		},
		{
			name:       "header never written",
			writer:     func() http.ResponseWriter { return newAppResponseWriter(httptest.NewRecorder(), 1) },
			wantStatus: http.StatusOK,
		},
		{
			name: "run not found",
			writer: func() http.ResponseWriter {
				w := newAppResponseWriter(httptest.NewRecorder(), 1)
				w.SetServiceError(svcerrors.NewNotFoundError("QRY_1001", "run not found", nil))
				w.WriteHeader(http.StatusNotFound)
				return w
			},
			wantStatus:    http.StatusNotFound,
			wantErrorCode: "QRY_1001",
		},
		{
			name: "store failure",
			writer: func() http.ResponseWriter {
				w := newAppResponseWriter(httptest.NewRecorder(), 1)
				w.SetServiceError(svcerrors.NewInternalError("RUN_9000", nil))
				w.WriteHeader(http.StatusInternalServerError)
				return w
			},
			wantStatus:      http.StatusInternalServerError,
			wantErrorCode:   "RUN_9000",
			wantServerFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcome := outcomeOf(tt.writer())
			assert.Equal(t, tt.wantStatus, outcome.status)
			assert.Equal(t, tt.wantErrorCode, outcome.errorCode)
			assert.Equal(t, tt.wantServerFault, outcome.serverFault())
		})
	}
}
