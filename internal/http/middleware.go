package http

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/shared/svcerrors"
	"traffic-rollup/internal/shared/ulid"

	"github.com/go-chi/chi/v5"
)

func setupMiddleware(router *chi.Mux, httpLogger loggers.Logger) {
	router.Use(mwRequestID(httpLogger))
	router.Use(mwAppResponseWriter)
	router.Use(mwPrometheus)
	router.Use(mwRequestCompletionLog)
	router.Use(mwRecoverer)
}

// mwMaxBodyBytes caps the request body and records how much of it the handler read.
// Reads past the limit fail, which surfaces as a validation error.
func mwMaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := r.Body
			if limit > 0 {
				body = http.MaxBytesReader(w, body, limit)
			}
			counted := &countingBody{ReadCloser: body}
			r.Body = counted
			next.ServeHTTP(w, r)

			routePattern := "unmatched"
			if routeContext := chi.RouteContext(r.Context()); routeContext != nil && routeContext.RoutePattern() != "" {
				routePattern = routeContext.RoutePattern()
			}
			metricHTTPRequestBodyBytes.WithLabelValues(r.Method, routePattern).Observe(float64(counted.n))
		})
	}
}

type countingBody struct {
	io.ReadCloser
	n int64
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += int64(n)
	return n, err
}

// mwAppResponseWriter initializes the appResponseWriter once and passes it through the middleware chain.
func mwAppResponseWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appWriter := newAppResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(appWriter, r)
	})
}

// mwPrometheus records request counts and latency labelled by route pattern, never the raw path,
// so run ids do not become label values.
func mwPrometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		routePattern := "unmatched"
		if routeContext := chi.RouteContext(r.Context()); routeContext != nil && routeContext.RoutePattern() != "" {
			routePattern = routeContext.RoutePattern()
		}

		outcome := outcomeOf(w)
		statusStr := strconv.Itoa(outcome.status)

		metricHTTPRequestsTotal.WithLabelValues(
			r.Method,
			routePattern,
			statusStr,
			outcome.errorCode,
		).Inc()

		metricHTTPRequestDuration.WithLabelValues(
			r.Method,
			routePattern,
			statusStr,
			outcome.errorCode,
		).Observe(time.Since(start).Seconds())
	})
}

// mwRequestID extracts or generates a request ID and attaches a request-scoped logger to context.
func mwRequestID(httpLogger loggers.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := requestID(r)
			if requestID == "" {
				requestID = ulid.NewULID()
				setRequestID(r, requestID)
			}
			w.Header().Set(headerRequestID, requestID)
			ctxWithReqLogger := httpLogger.With().
				Str(loggers.FieldRequestID, requestID).
				Logger().WithContext(r.Context())

			next.ServeHTTP(w, r.WithContext(ctxWithReqLogger))
		})
	}
}

// mwRequestCompletionLog logs one line per request. Failed requests carry their error code.
func mwRequestCompletionLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			outcome := outcomeOf(w)

			event := loggers.Ctx(r.Context()).Info()
			if outcome.serverFault() {
				event = loggers.Ctx(r.Context()).Warn()
			}
			if outcome.errorCode != "" {
				event = event.Str(loggers.FieldErrorCode, outcome.errorCode)
			}
			event.
				Str(loggers.FieldHttpMethod, r.Method).
				Str(loggers.FieldHttpPath, r.URL.Path).
				Int(loggers.FieldHttpStatus, outcome.status).
				Int64(loggers.FieldDuration, time.Since(start).Milliseconds()).
				Msg("request completed")
		}()

		next.ServeHTTP(w, r)
	})
}

// mwRecoverer provides panic recovery middleware.
func mwRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				loggers.Ctx(r.Context()).Error().
					Bytes(loggers.FieldErrorStack, debug.Stack()).
					Msgf("http panic recovered: %v", p)

				// Convert panic value to error
				var panicErr error
				if err, ok := p.(error); ok {
					panicErr = err
				} else {
					panicErr = fmt.Errorf("%v", p)
				}

				svcErr := svcerrors.NewInternalErrorPanic(panicErr)
				writeErrorResponse(w, r, svcErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
