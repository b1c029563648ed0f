package streams

import (
	"context"
	"encoding/binary"
	"hash/fnv"
)

// PartitionedQueue routes messages to a fixed set of buffered lanes by key.
// Messages with the same key always land on the same lane, so each lane can be
// drained by a single worker without locking.
type PartitionedQueue[T any] struct {
	name       string
	partitions []chan T
}

const (
	defaultNumPartitions = 8
	defaultBuffer        = 1024
)

func NewPartitionedQueue[T any](name string, numPartitions, buffer int) *PartitionedQueue[T] {
	if numPartitions <= 0 {
		numPartitions = defaultNumPartitions
	}
	if buffer < 0 {
		buffer = defaultBuffer
	}
	channels := make([]chan T, numPartitions)
	for i := range channels {
		channels[i] = make(chan T, buffer)
	}
	return &PartitionedQueue[T]{name: name, partitions: channels}
}

func (queue *PartitionedQueue[T]) PartitionCount() int { return len(queue.partitions) }

// Partition returns the receive side of lane i for its worker.
func (queue *PartitionedQueue[T]) Partition(i int) <-chan T { return queue.partitions[i] }

// Publish blocks until the message is accepted by its lane or ctx is done.
func (queue *PartitionedQueue[T]) Publish(ctx context.Context, partitionKey string, msg T) error {
	idx := PartitionIndex(partitionKey, len(queue.partitions))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case queue.partitions[idx] <- msg:
		metricMessagePublishedTotal.WithLabelValues(queue.name).Inc()
		metricMessageBacklog.WithLabelValues(queue.name).Inc()
		return nil
	}
}

// Close closes every lane. Publishing after Close panics.
func (queue *PartitionedQueue[T]) Close() {
	for _, ch := range queue.partitions {
		close(ch)
	}
}

func PartitionIndex(key string, n int) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(key))
	sum := hash.Sum(nil)
	v := binary.LittleEndian.Uint32(sum)
	return int(v % uint32(n))
}
