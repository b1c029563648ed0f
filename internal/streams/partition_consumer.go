package streams

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"traffic-rollup/internal/shared/loggers"
	"traffic-rollup/internal/shared/metrics"
	"traffic-rollup/internal/shared/svcerrors"

	"golang.org/x/sync/errgroup"
)

// Handler processes one message taken from a partition. Handlers for different
// partitions run concurrently; messages of one partition are handled in order.
type Handler[T any] func(ctx context.Context, partition int, msg T) error

// PartitionConsumer drains a PartitionedQueue with one worker goroutine per partition.
type PartitionConsumer[T any] struct {
	queue   *PartitionedQueue[T]
	handler Handler[T]
	logger  loggers.Logger
}

func NewPartitionConsumer[T any](queue *PartitionedQueue[T], handler Handler[T], logger loggers.Logger) *PartitionConsumer[T] {
	return &PartitionConsumer[T]{
		queue:   queue,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks until every partition is closed and drained, ctx is done, or a handler fails.
// The first handler error stops the remaining workers and is returned.
func (consumer *PartitionConsumer[T]) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for partitionIndex := 0; partitionIndex < consumer.queue.PartitionCount(); partitionIndex++ {
		group.Go(func() error {
			return consumer.runPartitionWorker(groupCtx, partitionIndex)
		})
	}
	return group.Wait()
}

func (consumer *PartitionConsumer[T]) runPartitionWorker(ctx context.Context, partitionIndex int) error {
	logger := consumer.logger.With().
		Str(loggers.FieldPartitionId, strconv.Itoa(partitionIndex)).
		Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Msg("partition worker started")
	defer logger.Debug().Msg("partition worker stopped")

	ch := consumer.queue.Partition(partitionIndex)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			metricMessageBacklog.WithLabelValues(consumer.queue.name).Dec()
			if err := consumer.handle(ctx, partitionIndex, msg); err != nil {
				return err
			}
		}
	}
}

// handle runs the handler with panic recovery so one bad message cannot crash the process.
func (consumer *PartitionConsumer[T]) handle(ctx context.Context, partitionIndex int, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			loggers.Ctx(ctx).Error().
				Bytes(loggers.FieldErrorStack, debug.Stack()).
				Msg("consumer panic recovered")

			var panicErr error
			if e, ok := r.(error); ok {
				panicErr = e
			} else {
				panicErr = fmt.Errorf("%v", r)
			}

			svcErr := svcerrors.NewInternalErrorPanic(panicErr)
			metricMessageConsumedTotal.WithLabelValues(consumer.queue.name, svcErr.Code).Inc()
			err = svcErr
		}
	}()

	if err := consumer.handler(ctx, partitionIndex, msg); err != nil {
		svcErr, ok := svcerrors.As(err)
		if !ok {
			svcErr = svcerrors.NewInternalErrorUndefined(err)
		}
		metricMessageConsumedTotal.WithLabelValues(consumer.queue.name, svcErr.Code).Inc()
		return err
	}
	metricMessageConsumedTotal.WithLabelValues(consumer.queue.name, metrics.ValueNoError).Inc()
	return nil
}
