package queries

import (
	"fmt"

	"traffic-rollup/internal/shared/svcerrors"
)

const (
	codeInvalidArgument = "QRY_1000"
	codeRunNotFound     = "QRY_1001"

	codeInternalSummaryStoreFailed = "QRY_9000"
)

func errInvalidArgument(msg string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidArgument, msg, cause)
}

func errRunNotFound(cause error) *svcerrors.ServiceError {
	return svcerrors.NewNotFoundError(codeRunNotFound, "run not found", cause)
}

func errInternalSummaryStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalSummaryStoreFailed, fmt.Errorf("summaryStoreFailed: %w", cause))
}
