package http

import (
	"net/http"

	"traffic-rollup/internal/shared/svcerrors"

	"github.com/go-chi/chi/v5/middleware"
)

// appResponseWriter records the service error of a failed request so metrics and logs can label it.
type appResponseWriter struct {
	middleware.WrapResponseWriter
	svcError *svcerrors.ServiceError
}

func newAppResponseWriter(w http.ResponseWriter, protoMajor int) *appResponseWriter {
	return &appResponseWriter{
		WrapResponseWriter: middleware.NewWrapResponseWriter(w, protoMajor),
	}
}

func (w *appResponseWriter) SetServiceError(svcError *svcerrors.ServiceError) {
	w.svcError = svcError
}

func (w *appResponseWriter) ErrorCode() string {
	if w.svcError != nil {
		return w.svcError.Code
	}
	return ""
}

// requestOutcome is what the observing middlewares report for a finished request.
type requestOutcome struct {
	status    int
	errorCode string
}

// outcomeOf reads the status and error code from w. A handler that never wrote a header
// answered 200.
func outcomeOf(w http.ResponseWriter) requestOutcome {
	outcome := requestOutcome{status: http.StatusOK}
	appWriter, ok := w.(*appResponseWriter)
	if !ok {
		return outcome
	}
	if appWriter.Status() != 0 {
		outcome.status = appWriter.Status()
	}
	outcome.errorCode = appWriter.ErrorCode()
	return outcome
}

func (o requestOutcome) serverFault() bool {
	return o.status >= http.StatusInternalServerError
}
