package stores

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"traffic-rollup/internal/models"
)

var (
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrRunNotFound      = errors.New("run not found")
	ErrInvalidRunID     = errors.New("invalid run id")
)

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateRunID accepts ids made of letters, digits, '-' and '_', so an id can never escape its run directory.
func ValidateRunID(runID string) error {
	if !runIDPattern.MatchString(runID) {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

// SummaryStore persists the results of aggregation runs.
//
//go:generate mockgen -source=summary_store.go -destination=./mocks/summary_store_mock.go -package=mocks
type SummaryStore interface {
	// CreateRun reserves manifest.RunID. It fails with ErrRunAlreadyExists if the id is taken.
	CreateRun(ctx context.Context, manifest *models.RunManifest) error
	// CompleteRun replaces the manifest of an existing run.
	CompleteRun(ctx context.Context, manifest *models.RunManifest) error
	GetRun(ctx context.Context, runID string) (*models.RunManifest, error)
	SaveSummaries(ctx context.Context, runID string, summaries []models.WindowSummary) error
	SaveSamples(ctx context.Context, runID string, samples []models.WindowSample) error
	// ListSummaries returns the summaries of one resolution, or of all resolutions when
	// resolution is empty, ordered by resolution then window start.
	ListSummaries(ctx context.Context, runID string, resolution models.Resolution) ([]models.WindowSummary, error)
	ListSamples(ctx context.Context, runID string) ([]models.WindowSample, error)
}
