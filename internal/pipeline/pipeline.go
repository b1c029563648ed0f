package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"traffic-rollup/internal/aggregators"
	"traffic-rollup/internal/anomalies"
	"traffic-rollup/internal/connections"
	"traffic-rollup/internal/models"
	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/sketches"
	"traffic-rollup/internal/streams"

	"golang.org/x/sync/errgroup"
)

const streamRequestRecord = "request_record"

// Config is everything a Pipeline needs for one run.
type Config struct {
	Resolutions     []models.Resolution
	Shards          int
	QueueBuffer     int
	MaxRequestSpan  time.Duration
	BaselineWindows int
	Accumulator     aggregators.AccumulatorConfig
	// Seed makes reservoir sampling reproducible. Zero picks a random seed.
	Seed uint64
}

// Result is the output of a finalized run. Summaries are ordered by resolution
// (day first) and then by ascending window start. Samples are kept only for anomalous windows.
type Result struct {
	Summaries []models.WindowSummary
	Samples   []models.WindowSample
	Stats     models.RunStats
}

// Pipeline drives one aggregation run: sharded ingestion, a merge barrier, and an
// ordered finalize per resolution. A Pipeline is single-use.
type Pipeline struct {
	config    Config
	detector  *anomalies.Detector
	validator *aggregators.RecordValidator
	logger    loggers.Logger

	// mu guards state and the queue lifecycle. Ingest holds the read side while publishing.
	mu    sync.RWMutex
	state State

	queue       *streams.PartitionedQueue[models.RequestRecord]
	shards      []*shard
	workerCtx   context.Context
	workersDone chan error

	ingested        atomic.Int64
	decoderRejectMu sync.Mutex
	decoderRejected map[models.RejectReason]int64
}

func New(config Config, detector *anomalies.Detector, logger loggers.Logger) (*Pipeline, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &Pipeline{
		config:          config,
		detector:        detector,
		validator:       aggregators.NewRecordValidator(config.MaxRequestSpan),
		logger:          logger.With().Str(loggers.FieldComponent, "pipeline").Logger(),
		state:           StateEmpty,
		decoderRejected: make(map[models.RejectReason]int64),
	}, nil
}

func validateConfig(config Config) error {
	if len(config.Resolutions) == 0 {
		return errors.New("at least one resolution is required")
	}
	seen := make(map[models.Resolution]bool, len(config.Resolutions))
	for _, resolution := range config.Resolutions {
		if _, err := models.ParseResolution(string(resolution)); err != nil {
			return err
		}
		if seen[resolution] {
			return fmt.Errorf("duplicate resolution: %q", resolution)
		}
		seen[resolution] = true
	}
	if config.Shards < 1 {
		return fmt.Errorf("shards must be at least 1, got %d", config.Shards)
	}
	if config.Accumulator.HLLPrecision < sketches.MinPrecision || config.Accumulator.HLLPrecision > sketches.MaxPrecision {
		return fmt.Errorf("hll precision %d out of range [%d, %d]", config.Accumulator.HLLPrecision, sketches.MinPrecision, sketches.MaxPrecision)
	}
	return nil
}

func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Start spawns one worker per shard and moves the pipeline to Ingesting.
// Workers stop when ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateEmpty {
		panic(usageError("Start", p.state))
	}

	seed := p.config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	p.queue = streams.NewPartitionedQueue[models.RequestRecord](streamRequestRecord, p.config.Shards, p.config.QueueBuffer)
	p.shards = make([]*shard, p.config.Shards)
	for i := range p.shards {
		p.shards[i] = newShard(i, p.config.Resolutions, p.config.Accumulator, p.validator, rand.New(rand.NewPCG(seed, uint64(i))))
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.workerCtx = workerCtx
	p.workersDone = make(chan error, 1)

	consumer := streams.NewPartitionConsumer(p.queue, func(ctx context.Context, partition int, record models.RequestRecord) error {
		return p.shards[partition].ingest(record)
	}, p.logger)
	go func() {
		err := consumer.Run(workerCtx)
		// Unblocks any Ingest still publishing to a lane whose worker has stopped.
		cancel()
		p.workersDone <- err
	}()

	p.state = StateIngesting
	p.logger.Debug().Int("shards", p.config.Shards).Msg("pipeline started")
}

// Ingest routes record to its shard by client id. It blocks while the shard's lane is full.
func (p *Pipeline) Ingest(ctx context.Context, record models.RequestRecord) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != StateIngesting {
		panic(usageError("Ingest", p.state))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.queue.Publish(p.workerCtx, record.ClientID, record); err != nil {
		return err
	}
	p.ingested.Add(1)
	return nil
}

// Reject counts a record that never reached the pipeline, e.g. one the decoder could not parse.
func (p *Pipeline) Reject(reason models.RejectReason) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != StateIngesting {
		panic(usageError("Reject", p.state))
	}
	p.ingested.Add(1)
	aggregators.CountRejection(reason)

	p.decoderRejectMu.Lock()
	defer p.decoderRejectMu.Unlock()
	p.decoderRejected[reason]++
}

// FinalizeAll closes ingestion, waits for every shard, merges same-key windows and
// finalizes them. On cancellation or failure nothing is returned and the pipeline is Discarded.
func (p *Pipeline) FinalizeAll(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	if p.state != StateIngesting {
		state := p.state
		p.mu.Unlock()
		panic(usageError("FinalizeAll", state))
	}
	p.state = StateMerging
	p.queue.Close()
	p.mu.Unlock()

	// Barrier: every shard has drained its lane.
	if err := <-p.workersDone; err != nil {
		p.discard()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errInternalShardWorkerFailed(err)
	}
	if err := ctx.Err(); err != nil {
		p.discard()
		return nil, err
	}
	for _, s := range p.shards {
		p.logger.Debug().
			Int(loggers.FieldShardID, s.id).
			Int64(loggers.FieldRecords, s.accepted).
			Int(loggers.FieldWindows, len(s.accumulators)).
			Msg("shard drained")
	}

	started := time.Now()
	merged, tally, err := p.merge(ctx)
	if err != nil {
		p.discard()
		return nil, err
	}
	metricStageDuration.WithLabelValues(stageMerge).Observe(time.Since(started).Seconds())
	p.logger.Info().
		Int(loggers.FieldWindows, len(merged)).
		Dur(loggers.FieldDuration, time.Since(started)).
		Msg("shards merged")

	started = time.Now()
	result, err := p.finalize(ctx, merged, tally)
	if err != nil {
		p.discard()
		return nil, err
	}
	result.Stats = p.stats(len(result.Summaries))
	metricStageDuration.WithLabelValues(stageFinalize).Observe(time.Since(started).Seconds())
	p.logger.Info().
		Int(loggers.FieldWindows, len(result.Summaries)).
		Dur(loggers.FieldDuration, time.Since(started)).
		Msg("windows finalized")
	if rejected := result.Stats.RejectedTotal(); rejected > 0 {
		p.logger.Warn().
			Int64(loggers.FieldRecords, result.Stats.Ingested).
			Int64(loggers.FieldRejected, rejected).
			Msg("records rejected during run")
	}

	p.mu.Lock()
	p.state = StateFinalized
	p.mu.Unlock()
	return result, nil
}

func (p *Pipeline) discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateDiscarded
	p.shards = nil
}

// merge folds same-key accumulators of every shard into one, in parallel per key.
// Connection tallies are summed alongside.
func (p *Pipeline) merge(ctx context.Context) (map[models.BucketKey]*aggregators.WindowAccumulator, *connections.Tally, error) {
	byKey := make(map[models.BucketKey][]*aggregators.WindowAccumulator)
	for _, s := range p.shards {
		for key, acc := range s.accumulators {
			byKey[key] = append(byKey[key], acc)
		}
	}

	keys := make([]models.BucketKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	merged := make([]*aggregators.WindowAccumulator, len(keys))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	tally := p.shards[0].tally
	group.Go(func() error {
		for _, s := range p.shards[1:] {
			tally.Merge(s.tally)
		}
		return nil
	})

	for i, key := range keys {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			parts := byKey[key]
			for _, part := range parts[1:] {
				if err := parts[0].Merge(part); err != nil {
					return err
				}
			}
			merged[i] = parts[0]
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	result := make(map[models.BucketKey]*aggregators.WindowAccumulator, len(keys))
	for i, key := range keys {
		result[key] = merged[i]
	}
	return result, tally, nil
}

// finalize runs an ordered fold over ascending window start for each resolution.
// Resolutions are independent and run in parallel; each owns its Baseline.
func (p *Pipeline) finalize(ctx context.Context, merged map[models.BucketKey]*aggregators.WindowAccumulator, tally *connections.Tally) (*Result, error) {
	byResolution := make(map[models.Resolution][]*aggregators.WindowAccumulator)
	for key, acc := range merged {
		acc.AttachConnections(tally.Stats(key))
		byResolution[key.Resolution] = append(byResolution[key.Resolution], acc)
	}

	resolutions := make([]models.Resolution, 0, len(byResolution))
	for _, resolution := range models.AllResolutions() {
		if _, ok := byResolution[resolution]; ok {
			resolutions = append(resolutions, resolution)
		}
	}

	summaries := make([][]models.WindowSummary, len(resolutions))
	samples := make([][]models.WindowSample, len(resolutions))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, resolution := range resolutions {
		group.Go(func() error {
			accs := byResolution[resolution]
			sort.Slice(accs, func(a, b int) bool {
				return accs[a].Key().BucketStart.Before(accs[b].Key().BucketStart)
			})

			baseline := anomalies.NewBaseline(p.config.BaselineWindows)
			for _, acc := range accs {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				summary := acc.Finalize(p.detector, baseline)
				// A window holding only rejected records says nothing about traffic.
				if summary.TotalRequests > 0 {
					baseline.RecordWindow(summary)
				}

				summaries[i] = append(summaries[i], *summary)
				if summary.IsAnomalous() {
					samples[i] = append(samples[i], acc.Sample())
					p.logger.Debug().
						Str(loggers.FieldBucketID, summary.BucketID).
						Float64("anomaly_score", summary.AnomalyScore).
						Msg("anomalous window")
				}
			}
			p.logger.Debug().
				Str(loggers.FieldResolution, string(resolution)).
				Int(loggers.FieldWindows, len(accs)).
				Msg("resolution finalized")
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Summaries: make([]models.WindowSummary, 0, len(merged)),
		Samples:   []models.WindowSample{},
	}
	for i := range resolutions {
		result.Summaries = append(result.Summaries, summaries[i]...)
		result.Samples = append(result.Samples, samples[i]...)
	}
	return result, nil
}

func (p *Pipeline) stats(windows int) models.RunStats {
	stats := models.RunStats{
		Ingested: p.ingested.Load(),
		Rejected: make(map[models.RejectReason]int64),
		Windows:  windows,
	}
	for _, s := range p.shards {
		stats.Accepted += s.accepted
		stats.Clamped += s.clamped
		for reason, n := range s.rejected {
			stats.Rejected[reason] += n
		}
	}

	p.decoderRejectMu.Lock()
	defer p.decoderRejectMu.Unlock()
	for reason, n := range p.decoderRejected {
		stats.Rejected[reason] += n
	}
	return stats
}
