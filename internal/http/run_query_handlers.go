package http

import (
	"net/http"

	"traffic-rollup/internal/models"
	"traffic-rollup/internal/queries"

	"github.com/go-chi/chi/v5"
)

type SummariesResponse struct {
	RunID      string                 `json:"runId"`
	Resolution string                 `json:"resolution,omitempty"`
	Summaries  []models.WindowSummary `json:"summaries"`
}

type SamplesResponse struct {
	RunID   string                `json:"runId"`
	Samples []models.WindowSample `json:"samples"`
}

type getRunHandler struct {
	queryService queries.RunQueryService
}

func NewGetRunHandler(queryService queries.RunQueryService) AppHttpHandler {
	return &getRunHandler{queryService: queryService}
}

// Handle processes GET /runs/{runID}.
func (h *getRunHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	manifest, err := h.queryService.GetRun(r.Context(), chi.URLParam(r, paramRunID))
	if err != nil {
		return err
	}
	writeJSONResponse(w, http.StatusOK, manifest)
	return nil
}

type listSummariesHandler struct {
	queryService queries.RunQueryService
}

func NewListSummariesHandler(queryService queries.RunQueryService) AppHttpHandler {
	return &listSummariesHandler{queryService: queryService}
}

// Handle processes GET /runs/{runID}/summaries?resolution=minute.
func (h *listSummariesHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	runID := chi.URLParam(r, paramRunID)
	resolution := r.URL.Query().Get(queryResolution)

	summaries, err := h.queryService.ListSummaries(r.Context(), runID, resolution)
	if err != nil {
		return err
	}
	writeJSONResponse(w, http.StatusOK, SummariesResponse{
		RunID:      runID,
		Resolution: resolution,
		Summaries:  summaries,
	})
	return nil
}

type listSamplesHandler struct {
	queryService queries.RunQueryService
}

func NewListSamplesHandler(queryService queries.RunQueryService) AppHttpHandler {
	return &listSamplesHandler{queryService: queryService}
}

// Handle processes GET /runs/{runID}/samples.
func (h *listSamplesHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	runID := chi.URLParam(r, paramRunID)

	samples, err := h.queryService.ListSamples(r.Context(), runID)
	if err != nil {
		return err
	}
	writeJSONResponse(w, http.StatusOK, SamplesResponse{RunID: runID, Samples: samples})
	return nil
}
