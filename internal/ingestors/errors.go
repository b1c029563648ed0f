package ingestors

import (
	"fmt"

	"traffic-rollup/internal/shared/svcerrors"
)

// IngestionService errors
const (
	codeValidationFailed = "RUN_1000"
	codeRunAlreadyExists = "RUN_1001"

	codeInternalSummaryStoreFailed = "RUN_9000"
	codeInternalPipelineFailed     = "RUN_9001"
)

// errValidationFailed returns an error for validation failures.
func errValidationFailed(msg string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeValidationFailed, msg, cause)
}

// errRunAlreadyExists returns an error when the run id has been used before.
func errRunAlreadyExists(cause error) *svcerrors.ServiceError {
	return svcerrors.NewResourceConflictError(codeRunAlreadyExists, "run already exists", cause)
}

// errInternalSummaryStoreFailed returns an error when a summary store operation fails.
func errInternalSummaryStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalSummaryStoreFailed, fmt.Errorf("summaryStoreFailed: %w", cause))
}

func errInternalPipelineFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalPipelineFailed, fmt.Errorf("pipelineFailed: %w", cause))
}
