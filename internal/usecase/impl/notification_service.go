package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type notificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        service.EventPublisher
	logger           *slog.Logger
}

// NewNotificationService creates the notification inbox service instance
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.NotificationUsecase {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

// CreateNotification persists a client-created notification record and
// publishes the creation event. SystemGenerated stays false so the trigger
// handler knows the push is still owed.
func (s *notificationService) CreateNotification(ctx context.Context, input *usecase.NotificationInput) (*entity.NotificationRecord, error) {
	record := &entity.NotificationRecord{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Type:            entity.NotificationType(input.Type),
		Title:           input.Title,
		Body:            input.Body,
		DeepLink:        input.DeepLink,
		SystemGenerated: false,
		CreatedAt:       time.Now(),
	}

	if err := s.notificationRepo.CreateNotification(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to create notification")
	}

	event, err := service.NewEvent(uuid.NewString(), service.EventNotificationCreated,
		deliverycontext.GetRequestIDFromContext(ctx),
		&service.NotificationCreatedEvent{NotificationID: record.ID.String()})
	if err != nil {
		s.logger.Error("failed to build notification created event", slog.Any("error", err))

		return record, nil
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish notification created event",
			slog.String("notification_id", record.ID.String()),
			slog.Any("error", err),
		)
	}

	return record, nil
}

// GetUserNotifications retrieves a user's notifications, newest first
func (s *notificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error) {
	records, err := s.notificationRepo.FindNotificationsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	return records, nil
}

// MarkNotificationRead flips the read flag
func (s *notificationService) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	if err := s.notificationRepo.MarkNotificationRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return domainerrors.ErrNotificationNotFound
		}

		return errors.Wrap(err, "failed to mark notification read")
	}

	return nil
}

// DeleteNotification removes a notification record
func (s *notificationService) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if err := s.notificationRepo.DeleteNotification(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return domainerrors.ErrNotificationNotFound
		}

		return errors.Wrap(err, "failed to delete notification")
	}

	return nil
}
