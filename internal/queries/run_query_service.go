package queries

import (
	"context"
	"errors"
	"strings"

	"traffic-rollup/internal/models"
	"traffic-rollup/internal/stores"
)

// RunQueryService reads the results of completed runs.
//
//go:generate mockgen -source=run_query_service.go -destination=./mocks/run_query_service_mock.go -package=mocks
type RunQueryService interface {
	GetRun(ctx context.Context, runID string) (*models.RunManifest, error)
	// ListSummaries returns the summaries of one resolution, or all of them when resolution is empty.
	ListSummaries(ctx context.Context, runID string, resolution string) ([]models.WindowSummary, error)
	ListSamples(ctx context.Context, runID string) ([]models.WindowSample, error)
}

type runQueryService struct {
	store stores.SummaryStore
}

func NewRunQueryService(store stores.SummaryStore) RunQueryService {
	return &runQueryService{store: store}
}

func (s *runQueryService) GetRun(ctx context.Context, runID string) (*models.RunManifest, error) {
	if err := stores.ValidateRunID(runID); err != nil {
		return nil, errInvalidArgument(err.Error(), err)
	}
	manifest, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return manifest, nil
}

func (s *runQueryService) ListSummaries(ctx context.Context, runID string, resolution string) ([]models.WindowSummary, error) {
	if err := stores.ValidateRunID(runID); err != nil {
		return nil, errInvalidArgument(err.Error(), err)
	}

	var parsed models.Resolution
	if resolution = strings.TrimSpace(strings.ToLower(resolution)); resolution != "" {
		r, err := models.ParseResolution(resolution)
		if err != nil {
			return nil, errInvalidArgument(err.Error(), err)
		}
		parsed = r
	}

	summaries, err := s.store.ListSummaries(ctx, runID, parsed)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return summaries, nil
}

func (s *runQueryService) ListSamples(ctx context.Context, runID string) ([]models.WindowSample, error) {
	if err := stores.ValidateRunID(runID); err != nil {
		return nil, errInvalidArgument(err.Error(), err)
	}
	samples, err := s.store.ListSamples(ctx, runID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return samples, nil
}

func mapStoreError(err error) error {
	if errors.Is(err, stores.ErrRunNotFound) {
		return errRunNotFound(err)
	}
	return errInternalSummaryStoreFailed(err)
}
