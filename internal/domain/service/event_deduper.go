package service

import "context"

// EventDeduper records which events a consumer has already processed.
// The underlying platform delivers events at least once; handlers call
// CheckAndMarkProcessed before applying counter deltas or sending
// notifications so a redelivered event cannot double-count.
type EventDeduper interface {
	// CheckAndMarkProcessed atomically marks the event as processed for the
	// named consumer and reports whether it had been processed before.
	CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (alreadyProcessed bool, err error)

	// Forget removes the processed marker, allowing a retry after a handler
	// failed partway through.
	Forget(ctx context.Context, consumer, eventID string) error
}
