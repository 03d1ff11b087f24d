package usecase

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// Message is the content of a notification before it is addressed to anyone.
type Message struct {
	Type     entity.NotificationType
	Title    string
	Body     string
	DeepLink string
	// Data rides along in the push payload for client-side routing.
	Data map[string]string
}

// NotifierUsecase is the notification dispatcher. Notify persists the in-app
// record first — that write is the one that must succeed — and then attempts
// push delivery to the user's active devices, pruning tokens the provider
// rejects. Push failures are logged, never returned.
type NotifierUsecase interface {
	// Notify delivers a message to one user.
	Notify(ctx context.Context, userID uuid.UUID, msg *Message) (*entity.NotificationRecord, error)

	// NotifyMany fans a message out to many users with bounded concurrency.
	// It returns the number of users notified and an aggregate of per-user
	// record-write failures.
	NotifyMany(ctx context.Context, userIDs []uuid.UUID, msg *Message) (int, error)

	// PushExisting sends the push for an already persisted record, used by
	// the notification-created trigger for client-created records.
	PushExisting(ctx context.Context, record *entity.NotificationRecord) error
}
