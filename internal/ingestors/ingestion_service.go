package ingestors

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"traffic-rollup/internal/anomalies"
	"traffic-rollup/internal/models"
	"traffic-rollup/internal/pipeline"
	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/shared/metrics"
	"traffic-rollup/internal/shared/svcerrors"
	"traffic-rollup/internal/shared/ulid"
	"traffic-rollup/internal/stores"
)

const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
)

// RunResult describes a completed aggregation run.
type RunResult struct {
	RunID     string                 `json:"runId"`
	Manifest  *models.RunManifest    `json:"manifest"`
	Summaries []models.WindowSummary `json:"summaries"`
	Samples   []models.WindowSample  `json:"samples"`
	Stats     models.RunStats        `json:"stats"`
}

//go:generate mockgen -source=ingestion_service.go -destination=./mocks/ingestion_service_mock.go -package=mocks
type IngestionService interface {
	// IngestRun aggregates every record read from r into a new run. An empty runID gets a generated ULID.
	IngestRun(ctx context.Context, runID string, format string, r io.Reader) (*RunResult, error)
}

type ServiceConfig struct {
	Pipeline     pipeline.Config
	MaxLineBytes int
}

type ingestionService struct {
	config   ServiceConfig
	detector *anomalies.Detector
	store    stores.SummaryStore
	now      func() time.Time
}

func NewIngestionService(config ServiceConfig, detector *anomalies.Detector, store stores.SummaryStore) IngestionService {
	return &ingestionService{
		config:   config,
		detector: detector,
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ingestionService) IngestRun(ctx context.Context, runID string, format string, r io.Reader) (*RunResult, error) {
	metricRunsInFlight.Inc()
	defer metricRunsInFlight.Dec()

	started := time.Now()
	result, err := s.ingestRun(ctx, runID, format, r)

	errorCode := metrics.ValueNoError
	if svcErr, ok := svcerrors.As(err); ok {
		errorCode = svcErr.Code
	}
	metricRunIngestedTotal.WithLabelValues(errorCode).Inc()
	metricRunDuration.WithLabelValues(errorCode).Observe(time.Since(started).Seconds())
	return result, err
}

func (s *ingestionService) ingestRun(ctx context.Context, runID string, format string, r io.Reader) (*RunResult, error) {
	createdAt := s.now()
	runID = strings.TrimSpace(runID)
	if runID == "" {
		runID = ulid.NewULIDAt(createdAt)
	}
	if err := s.validateRequest(runID, format, r); err != nil {
		return nil, err
	}

	logger := loggers.Ctx(ctx).With().Str(loggers.FieldRunID, runID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Debug().Msgf("started ingesting run with format: %s", format)

	manifest := &models.RunManifest{
		RunID:       runID,
		Status:      models.RunStatusRunning,
		Resolutions: s.config.Pipeline.Resolutions,
		CreatedAt:   createdAt,
	}
	if err := s.store.CreateRun(ctx, manifest); err != nil {
		switch {
		case errors.Is(err, stores.ErrRunAlreadyExists):
			return nil, errRunAlreadyExists(err)
		case errors.Is(err, stores.ErrInvalidRunID):
			return nil, errValidationFailed(err.Error(), err)
		default:
			return nil, errInternalSummaryStoreFailed(err)
		}
	}

	result, err := s.aggregate(ctx, logger, r)
	if err != nil {
		s.failRun(ctx, manifest)
		return nil, err
	}

	if err := s.store.SaveSummaries(ctx, runID, result.Summaries); err != nil {
		s.failRun(ctx, manifest)
		return nil, errInternalSummaryStoreFailed(err)
	}
	if err := s.store.SaveSamples(ctx, runID, result.Samples); err != nil {
		s.failRun(ctx, manifest)
		return nil, errInternalSummaryStoreFailed(err)
	}

	completedAt := s.now()
	manifest.Status = models.RunStatusCompleted
	manifest.CompletedAt = &completedAt
	manifest.Stats = &result.Stats
	if err := s.store.CompleteRun(ctx, manifest); err != nil {
		return nil, errInternalSummaryStoreFailed(err)
	}

	logger.Info().
		Int64(loggers.FieldRecords, result.Stats.Ingested).
		Int64(loggers.FieldRejected, result.Stats.RejectedTotal()).
		Int(loggers.FieldWindows, len(result.Summaries)).
		Msg("run completed")

	return &RunResult{
		RunID:     runID,
		Manifest:  manifest,
		Summaries: result.Summaries,
		Samples:   result.Samples,
		Stats:     result.Stats,
	}, nil
}

func (s *ingestionService) validateRequest(runID string, format string, r io.Reader) error {
	if err := stores.ValidateRunID(runID); err != nil {
		return errValidationFailed(err.Error(), err)
	}
	if r == nil {
		return errValidationFailed("empty request body", nil)
	}
	formatLower := strings.ToLower(format)
	if !strings.Contains(formatLower, FormatJSON) {
		return errValidationFailed(fmt.Sprintf("unsupported input format: %q", format), nil)
	}
	return nil
}

// aggregate streams r through a fresh pipeline. Lines the decoder cannot use are counted as
// rejections; the run itself only fails on read errors, cancellation or a pipeline failure.
func (s *ingestionService) aggregate(ctx context.Context, logger loggers.Logger, r io.Reader) (*pipeline.Result, error) {
	p, err := pipeline.New(s.config.Pipeline, s.detector, logger)
	if err != nil {
		return nil, errInternalPipelineFailed(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.Start(runCtx)

	decoder := NewRecordDecoder(r, s.config.MaxLineBytes)
	if err := s.feed(runCtx, p, decoder); err != nil {
		cancel()
		_, _ = p.FinalizeAll(runCtx)
		return nil, err
	}

	result, err := p.FinalizeAll(runCtx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if _, ok := svcerrors.As(err); ok {
			return nil, err
		}
		return nil, errInternalPipelineFailed(err)
	}
	return result, nil
}

func (s *ingestionService) feed(ctx context.Context, p *pipeline.Pipeline, decoder *RecordDecoder) error {
	for {
		record, reason, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, bufio.ErrTooLong) {
			return errValidationFailed(fmt.Sprintf("record too large: %v", err), err)
		}
		if err != nil {
			return errValidationFailed("failed to read request body", err)
		}

		if reason != "" {
			metricRecordDecodedTotal.WithLabelValues(outcomeRejected).Inc()
			p.Reject(reason)
			continue
		}
		metricRecordDecodedTotal.WithLabelValues(outcomeAccepted).Inc()
		if err := p.Ingest(ctx, record); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// A shard worker stopped; FinalizeAll reports why.
			return nil
		}
	}
}

// failRun marks the run as failed. It runs even when ctx has been cancelled.
func (s *ingestionService) failRun(ctx context.Context, manifest *models.RunManifest) {
	completedAt := s.now()
	manifest.Status = models.RunStatusFailed
	manifest.CompletedAt = &completedAt
	if err := s.store.CompleteRun(context.WithoutCancel(ctx), manifest); err != nil {
		loggers.Ctx(ctx).Error().Err(err).Msg("failed to mark run as failed")
	}
}
