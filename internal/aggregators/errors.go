package aggregators

import (
	"fmt"

	"traffic-rollup/internal/shared/svcerrors"
)

const (
	codeInternalWindowMergeFailed = "AGG_9000"
)

// errInternalWindowMergeFailed returns an error when two window accumulators cannot be merged.
func errInternalWindowMergeFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalWindowMergeFailed, fmt.Errorf("windowMergeFailed: %w", cause))
}

// UsageError signals a call sequence the API does not allow, such as finalizing a window twice.
// It is raised with panic.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error: %s: %s", e.Op, e.Reason)
}
