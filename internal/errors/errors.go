package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/repository"
)

// ServiceError is the error shape the transport layer renders. Status is the
// HTTP status code the error maps to.
type ServiceError struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	cause   error
}

func NewServiceError(status int, message string) *ServiceError {
	return &ServiceError{
		Status:  status,
		Message: message,
		Time:    time.Now(),
	}
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("status: %d, message: %s: %v", e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("status: %d, message: %s", e.Status, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// Is matches on status and message so the package-level sentinels work with
// errors.Is even though WithCause returns copies.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

// WithCause returns a copy of e that wraps cause for logging.
func (e *ServiceError) WithCause(cause error) *ServiceError {
	cp := *e
	cp.cause = cause
	cp.Time = time.Now()
	return &cp
}

func (e *ServiceError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

var (
	ErrTaskNotFound     = NewServiceError(http.StatusNotFound, "task not found")
	ErrTaskNotAvailable = NewServiceError(http.StatusNotFound, "task is not available")
	ErrNoCompletedTasks = NewServiceError(http.StatusNotFound, "no task has been completed")
	ErrInvalidTaskID    = NewServiceError(http.StatusUnprocessableEntity, "invalid task id")
	ErrInternalError    = NewServiceError(http.StatusInternalServerError, "internal server error")
)

// WrapRepositoryError maps a repository failure onto a ServiceError. notFound
// selects which not-found message the calling operation reports; every other
// failure is an internal error.
func WrapRepositoryError(err error, notFound *ServiceError) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	switch {
	case repository.IsNotFoundError(err):
		if notFound == nil {
			notFound = ErrTaskNotFound
		}
		return notFound.WithCause(err)
	default:
		return ErrInternalError.WithCause(err)
	}
}

// Validation wraps a request decoding or validation failure as a 422.
func Validation(err error) *ServiceError {
	return NewServiceError(http.StatusUnprocessableEntity, err.Error()).WithCause(err)
}
