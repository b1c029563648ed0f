package http

import (
	"net/http"

	"traffic-rollup/internal/ingestors"
	"traffic-rollup/internal/models"
)

// RunResponse is the body of a successful POST /runs. Summaries are fetched separately.
type RunResponse struct {
	RunID            string            `json:"runId"`
	Status           models.RunStatus  `json:"status"`
	Stats            models.RunStats   `json:"stats"`
	Windows          int               `json:"windows"`
	AnomalousWindows int               `json:"anomalousWindows"`
	Links            map[string]string `json:"links"`
}

type ingestRunHandler struct {
	ingestionService ingestors.IngestionService
}

func NewIngestRunHandler(ingestionService ingestors.IngestionService) AppHttpHandler {
	return &ingestRunHandler{
		ingestionService: ingestionService,
	}
}

// Handle processes POST /runs with an NDJSON body.
func (h *ingestRunHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	result, err := h.ingestionService.IngestRun(r.Context(), idempotencyKey(r), contentType(r), r.Body)
	if err != nil {
		return err
	}

	anomalous := 0
	for i := range result.Summaries {
		if result.Summaries[i].IsAnomalous() {
			anomalous++
		}
	}

	writeJSONResponse(w, http.StatusCreated, RunResponse{
		RunID:            result.RunID,
		Status:           result.Manifest.Status,
		Stats:            result.Stats,
		Windows:          len(result.Summaries),
		AnomalousWindows: anomalous,
		Links: map[string]string{
			"summaries": "/runs/" + result.RunID + "/summaries",
			"samples":   "/runs/" + result.RunID + "/samples",
		},
	})
	return nil
}
