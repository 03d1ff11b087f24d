package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// EventType identifies the document event that fired a trigger.
type EventType string

const (
	// EventDonationCreated fires when a donation listing is created.
	EventDonationCreated EventType = "donation.created"
	// EventDonationUpdated fires on a donation status transition.
	EventDonationUpdated EventType = "donation.updated"
	// EventUserCreated fires when a user account is created.
	EventUserCreated EventType = "user.created"
	// EventNotificationCreated fires when a notification record is created.
	EventNotificationCreated EventType = "notification.created"
)

// Event is the envelope delivered to trigger handlers. EventID is the
// deduplication key: delivery is at-least-once, and handlers consult the
// processed-event marker keyed by it before applying side effects.
type Event struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id,omitempty"` // For distributed tracing
	Data       json.RawMessage `json:"data"`
}

// DonationCreatedEvent is the payload of EventDonationCreated.
type DonationCreatedEvent struct {
	DonationID string `json:"donation_id"`
}

// DonationUpdatedEvent is the payload of EventDonationUpdated. Old and new
// status travel with the event so the handler can detect no-op updates
// without a second read.
type DonationUpdatedEvent struct {
	DonationID string `json:"donation_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
}

// UserCreatedEvent is the payload of EventUserCreated.
type UserCreatedEvent struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// NotificationCreatedEvent is the payload of EventNotificationCreated.
type NotificationCreatedEvent struct {
	NotificationID string `json:"notification_id"`
}

// NewEvent wraps a payload in an Event envelope.
func NewEvent(eventID string, eventType EventType, requestID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Event{
		EventID:    eventID,
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		RequestID:  requestID,
		Data:       data,
	}, nil
}

// EventPublisher defines the interface for publishing document events to a message queue
type EventPublisher interface {
	// PublishEvent publishes a document event for async trigger processing
	PublishEvent(ctx context.Context, event *Event) error

	// Close releases any resources held by the publisher
	Close() error
}
