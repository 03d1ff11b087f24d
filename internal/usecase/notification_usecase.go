package usecase

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationInput represents a client-created notification (e.g. a direct
// message). Records created this way are pushed by the notification-created
// trigger rather than inline.
type NotificationInput struct {
	UserID   uuid.UUID `json:"user_id"`
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	DeepLink string    `json:"deep_link,omitempty"`
}

// NotificationUsecase defines the interface for the notification inbox
type NotificationUsecase interface {
	// CreateNotification persists a client-created notification record and
	// publishes the creation event
	CreateNotification(ctx context.Context, input *NotificationInput) (*entity.NotificationRecord, error)

	// GetUserNotifications retrieves a user's notifications, newest first
	GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error)

	// MarkNotificationRead flips the read flag
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error

	// DeleteNotification removes a notification record
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}
