package pipeline

import (
	"math/rand/v2"

	"traffic-rollup/internal/aggregators"
	"traffic-rollup/internal/connections"
	"traffic-rollup/internal/models"
)

// shard is the state owned by one worker during ingestion. Nothing in it is shared.
type shard struct {
	id          int
	resolutions []models.Resolution
	config      aggregators.AccumulatorConfig
	validator   *aggregators.RecordValidator
	rng         *rand.Rand

	accumulators map[models.BucketKey]*aggregators.WindowAccumulator
	tally        *connections.Tally

	accepted int64
	clamped  int64
	rejected map[models.RejectReason]int64
}

func newShard(id int, resolutions []models.Resolution, config aggregators.AccumulatorConfig, validator *aggregators.RecordValidator, rng *rand.Rand) *shard {
	return &shard{
		id:           id,
		resolutions:  resolutions,
		config:       config,
		validator:    validator,
		rng:          rng,
		accumulators: make(map[models.BucketKey]*aggregators.WindowAccumulator),
		tally:        connections.NewTally(),
		rejected:     make(map[models.RejectReason]int64),
	}
}

// ingest validates record and folds it into the window of every resolution.
// Metrics are bucketed by completion time.
func (s *shard) ingest(record models.RequestRecord) error {
	verdict := s.validator.Validate(&record)
	if !verdict.Accepted() {
		s.rejected[verdict.Reason]++
		if record.CompletionTime.IsZero() {
			return nil
		}
		for _, resolution := range s.resolutions {
			acc, err := s.accumulator(models.NewBucketKey(resolution, record.CompletionTime))
			if err != nil {
				return err
			}
			acc.RecordRejection(verdict.Reason)
		}
		return nil
	}

	s.accepted++
	s.clamped += int64(len(verdict.Clamped))

	interval := connections.Interval{Arrival: record.ArrivalTime, Completion: record.CompletionTime}
	for _, resolution := range s.resolutions {
		acc, err := s.accumulator(models.NewBucketKey(resolution, record.CompletionTime))
		if err != nil {
			return err
		}
		if len(verdict.Clamped) > 0 {
			acc.RecordClamp(len(verdict.Clamped))
		}
		acc.Update(&record)
		s.tally.Observe(resolution, interval)
	}
	return nil
}

func (s *shard) accumulator(key models.BucketKey) (*aggregators.WindowAccumulator, error) {
	if acc, ok := s.accumulators[key]; ok {
		return acc, nil
	}
	// Each window gets its own random source so windows can be merged in parallel later.
	rng := rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
	acc, err := aggregators.NewWindowAccumulator(key, s.config, rng)
	if err != nil {
		return nil, err
	}
	s.accumulators[key] = acc
	return acc, nil
}
