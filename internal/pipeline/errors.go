package pipeline

import (
	"fmt"

	"traffic-rollup/internal/aggregators"
	"traffic-rollup/internal/shared/svcerrors"
)

const (
	codeInternalShardWorkerFailed = "PIP_9000"
)

// errInternalShardWorkerFailed returns an error when a shard worker stops with an error or a panic.
func errInternalShardWorkerFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalShardWorkerFailed, fmt.Errorf("shardWorkerFailed: %w", cause))
}

func usageError(op string, state State) *aggregators.UsageError {
	return &aggregators.UsageError{Op: op, Reason: fmt.Sprintf("pipeline is %s", state)}
}
