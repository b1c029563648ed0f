package svcerrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	categoryInvalidArgument  = "invalid_argument"
	categoryResourceConflict = "resource_conflict"
	categoryNotFound         = "not_found"
	categoryInternal         = "internal"
)

const (
	errorCodeInternalPanic     = "SYS_9000"
	errorCodeInternalUndefined = "SYS_9001"
)

const messageInternal = "internal server error"

// ServiceError is an error a caller can act on: a category, a stable code and a client-safe message.
// The cause stays in the chain for errors.Is and errors.As but is never shown to clients.
type ServiceError struct {
	Category       string // invalid_argument, resource_conflict, not_found or internal
	Code           string // stable, owned by the raising package (e.g. RUN_1000)
	Message        string
	Cause          error
	HttpStatusCode int
}

func newServiceError(category, code, message string, cause error, status int) *ServiceError {
	return &ServiceError{
		Category:       category,
		Code:           code,
		Message:        message,
		Cause:          cause,
		HttpStatusCode: status,
	}
}

func NewInvalidArgumentError(code, message string, cause error) *ServiceError {
	return newServiceError(categoryInvalidArgument, code, message, cause, http.StatusBadRequest)
}

func NewResourceConflictError(code, message string, cause error) *ServiceError {
	return newServiceError(categoryResourceConflict, code, message, cause, http.StatusConflict)
}

func NewNotFoundError(code, message string, cause error) *ServiceError {
	return newServiceError(categoryNotFound, code, message, cause, http.StatusNotFound)
}

// NewInternalError hides cause behind a generic message.
func NewInternalError(code string, cause error) *ServiceError {
	return newServiceError(categoryInternal, code, messageInternal, cause, http.StatusInternalServerError)
}

// NewInternalErrorUndefined wraps an error that was not raised as a ServiceError (SYS_9001).
func NewInternalErrorUndefined(cause error) *ServiceError {
	return NewInternalError(errorCodeInternalUndefined, cause)
}

// NewInternalErrorPanic wraps a recovered panic value (SYS_9000).
func NewInternalErrorPanic(cause error) *ServiceError {
	return NewInternalError(errorCodeInternalPanic, cause)
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func (e *ServiceError) IsInternalError() bool {
	return e.Category == categoryInternal
}

// As returns the first ServiceError in err's chain.
func As(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
