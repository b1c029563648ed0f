package http

import (
	"net/http"

	"traffic-rollup/internal/ingestors"
	"traffic-rollup/internal/queries"
	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/shared/metrics"

	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	// MaxBodyBytes caps the size of a POST /runs body. Zero means no limit.
	MaxBodyBytes int64
}

// NewRouter creates and configures the HTTP router.
func NewRouter(config RouterConfig, ingestionService ingestors.IngestionService, queryService queries.RunQueryService, httpLogger loggers.Logger) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	router.Route("/runs", func(r chi.Router) {
		r.With(mwMaxBodyBytes(config.MaxBodyBytes)).
			Post("/", errorHandlingAdapter(NewIngestRunHandler(ingestionService)))
		r.Get("/{runID}", errorHandlingAdapter(NewGetRunHandler(queryService)))
		r.Get("/{runID}/summaries", errorHandlingAdapter(NewListSummariesHandler(queryService)))
		r.Get("/{runID}/samples", errorHandlingAdapter(NewListSamplesHandler(queryService)))
	})
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)

	return router
}
