// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for notification persistence.
var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationRepository defines the interface for notification-related database operations.
type NotificationRepository interface {
	// CreateNotification persists a new notification record.
	CreateNotification(ctx context.Context, notification *entity.NotificationRecord) error

	// FindNotificationByID retrieves a notification by its unique ID.
	FindNotificationByID(ctx context.Context, id uuid.UUID) (*entity.NotificationRecord, error)

	// FindNotificationsByUser retrieves notifications for a user, newest first.
	FindNotificationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error)

	// MarkNotificationRead flips the read flag of a notification.
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error

	// DeleteNotification removes a notification record.
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}
