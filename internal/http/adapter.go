package http

import (
	"encoding/json"
	"net/http"

	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/shared/svcerrors"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ErrorResponse is the error envelope of every endpoint.
// RunID is set when the failing request addressed a run, by path or by idempotency key.
type ErrorResponse struct {
	RequestID        string `json:"requestId"`
	RunID            string `json:"runId,omitempty"`
	ErrorCategory    string `json:"errorCategory"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

type AppHttpHandler interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

func errorHandlingAdapter(httpHandler AppHttpHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := httpHandler.Handle(w, r)
		if err == nil {
			return
		}

		svcErr, ok := svcerrors.As(err)
		if !ok {
			svcErr = svcerrors.NewInternalErrorUndefined(err)
		}
		writeErrorResponse(w, r, svcErr)
	}
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, svcErr *svcerrors.ServiceError) {
	// set serviceError for middlewares
	if appWriter, ok := w.(*appResponseWriter); ok {
		appWriter.SetServiceError(svcErr)
	}

	runID := addressedRunID(r)
	event := loggers.Ctx(r.Context()).WithLevel(errorLogLevel(svcErr)).
		Str(loggers.FieldErrorCode, svcErr.Code).
		Str("errorCategory", svcErr.Category).
		Int("httpStatusCode", svcErr.HttpStatusCode)
	if runID != "" {
		event = event.Str(loggers.FieldRunID, runID)
	}
	if svcErr.IsInternalError() {
		event.Err(svcErr.Cause).Msg("internal error in handler")
	} else {
		event.Str("errorMessage", svcErr.Message).Msg("error response")
	}

	writeJSONResponse(w, svcErr.HttpStatusCode, ErrorResponse{
		RequestID:        requestID(r),
		RunID:            runID,
		ErrorCategory:    svcErr.Category,
		ErrorCode:        svcErr.Code,
		ErrorDescription: svcErr.Message,
	})
}

// errorLogLevel keeps client mistakes out of the info stream.
// Missing or conflicting runs are worth seeing; malformed input is not.
func errorLogLevel(svcErr *svcerrors.ServiceError) zerolog.Level {
	switch {
	case svcErr.IsInternalError():
		return zerolog.ErrorLevel
	case svcErr.HttpStatusCode == http.StatusNotFound, svcErr.HttpStatusCode == http.StatusConflict:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// addressedRunID is the run a request refers to: the path parameter on queries, the idempotency key on ingestion.
func addressedRunID(r *http.Request) string {
	if runID := chi.URLParam(r, paramRunID); runID != "" {
		return runID
	}
	return idempotencyKey(r)
}

func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
