package usecase

import (
	"context"
	"fmt"

	"foodbridge/internal/domain/service"

	"github.com/pkg/errors"
)

// RetryableError wraps an error to indicate the event delivery should be
// retried. Handlers wrap transient failures (database, Redis) in it; data
// problems such as a deleted document or a malformed payload are logged and
// swallowed so the platform does not redeliver forever.
type RetryableError struct {
	err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *RetryableError) Unwrap() error {
	return e.err
}

// NewRetryableError wraps an error as retryable
func NewRetryableError(err error) error {
	return &RetryableError{err: err}
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	var re *RetryableError

	return errors.As(err, &re)
}

// TriggerUsecase processes document events. HandleEvent is idempotent per
// event ID: redelivered events are acknowledged without reapplying their
// side effects.
type TriggerUsecase interface {
	HandleEvent(ctx context.Context, event *service.Event) error
}
