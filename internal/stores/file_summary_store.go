package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"traffic-rollup/internal/models"
	"traffic-rollup/internal/shared/filestorages"
)

// fileSummaryStore lays runs out as JSON documents:
//
//	runs/<runID>/manifest.json
//	runs/<runID>/summaries/<resolution>.json
//	runs/<runID>/samples.json
type fileSummaryStore struct {
	fileStorage filestorages.FileStorage
	dir         string
}

func NewFileSummaryStore(fileStorage filestorages.FileStorage) SummaryStore {
	return &fileSummaryStore{fileStorage: fileStorage, dir: "runs"}
}

func (s *fileSummaryStore) CreateRun(ctx context.Context, manifest *models.RunManifest) error {
	if err := ValidateRunID(manifest.RunID); err != nil {
		return err
	}
	err := s.put(ctx, s.manifestKey(manifest.RunID), manifest, false)
	if errors.Is(err, filestorages.ErrFileAlreadyExists) {
		return fmt.Errorf("%w: %s", ErrRunAlreadyExists, manifest.RunID)
	}
	if err != nil {
		return fmt.Errorf("failed to put run manifest: %w", err)
	}
	return nil
}

func (s *fileSummaryStore) CompleteRun(ctx context.Context, manifest *models.RunManifest) error {
	if _, err := s.GetRun(ctx, manifest.RunID); err != nil {
		return err
	}
	if err := s.put(ctx, s.manifestKey(manifest.RunID), manifest, true); err != nil {
		return fmt.Errorf("failed to put run manifest: %w", err)
	}
	return nil
}

func (s *fileSummaryStore) GetRun(ctx context.Context, runID string) (*models.RunManifest, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}
	var manifest models.RunManifest
	if err := s.get(ctx, s.manifestKey(runID), &manifest); err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run manifest: %w", err)
	}
	return &manifest, nil
}

func (s *fileSummaryStore) SaveSummaries(ctx context.Context, runID string, summaries []models.WindowSummary) error {
	if err := ValidateRunID(runID); err != nil {
		return err
	}
	byResolution := make(map[models.Resolution][]models.WindowSummary)
	for _, summary := range summaries {
		byResolution[summary.Resolution] = append(byResolution[summary.Resolution], summary)
	}
	for _, resolution := range models.AllResolutions() {
		group, ok := byResolution[resolution]
		if !ok {
			continue
		}
		if err := s.put(ctx, s.summariesKey(runID, resolution), group, true); err != nil {
			return fmt.Errorf("failed to put %s summaries: %w", resolution, err)
		}
	}
	return nil
}

func (s *fileSummaryStore) SaveSamples(ctx context.Context, runID string, samples []models.WindowSample) error {
	if err := ValidateRunID(runID); err != nil {
		return err
	}
	if err := s.put(ctx, s.samplesKey(runID), samples, true); err != nil {
		return fmt.Errorf("failed to put samples: %w", err)
	}
	return nil
}

func (s *fileSummaryStore) ListSummaries(ctx context.Context, runID string, resolution models.Resolution) ([]models.WindowSummary, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	resolutions := models.AllResolutions()
	if resolution != "" {
		resolutions = []models.Resolution{resolution}
	}

	summaries := []models.WindowSummary{}
	for _, r := range resolutions {
		var group []models.WindowSummary
		err := s.get(ctx, s.summariesKey(runID, r), &group)
		if errors.Is(err, filestorages.ErrFileNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s summaries: %w", r, err)
		}
		summaries = append(summaries, group...)
	}
	return summaries, nil
}

func (s *fileSummaryStore) ListSamples(ctx context.Context, runID string) ([]models.WindowSample, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	samples := []models.WindowSample{}
	err := s.get(ctx, s.samplesKey(runID), &samples)
	if errors.Is(err, filestorages.ErrFileNotFound) {
		return []models.WindowSample{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get samples: %w", err)
	}
	return samples, nil
}

func (s *fileSummaryStore) put(ctx context.Context, key string, value any, allowOverwrite bool) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	_, err = s.fileStorage.Put(ctx, key, bytes.NewReader(jsonData), filestorages.PutOptions{AllowOverwrite: allowOverwrite})
	return err
}

func (s *fileSummaryStore) get(ctx context.Context, key string, value any) error {
	readCloser, err := s.fileStorage.Get(ctx, key)
	if err != nil {
		return err
	}
	defer readCloser.Close()

	data, err := io.ReadAll(readCloser)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *fileSummaryStore) manifestKey(runID string) string {
	return fmt.Sprintf("%s/%s/manifest.json", s.dir, runID)
}

func (s *fileSummaryStore) summariesKey(runID string, resolution models.Resolution) string {
	return fmt.Sprintf("%s/%s/summaries/%s.json", s.dir, runID, resolution)
}

func (s *fileSummaryStore) samplesKey(runID string) string {
	return fmt.Sprintf("%s/%s/samples.json", s.dir, runID)
}
