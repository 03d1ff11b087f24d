package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// triggerConsumer names this consumer in the processed-event markers.
const triggerConsumer = "trigger-worker"

type triggerService struct {
	txManager        repository.TransactionManager
	donationRepo     repository.DonationRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	deduper          service.EventDeduper
	notifier         usecase.NotifierUsecase
	logger           *slog.Logger
}

// NewTriggerService creates the trigger handler instance
func NewTriggerService(
	txManager repository.TransactionManager,
	donationRepo repository.DonationRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	deduper service.EventDeduper,
	notifier usecase.NotifierUsecase,
	logger *slog.Logger,
) usecase.TriggerUsecase {
	return &triggerService{
		txManager:        txManager,
		donationRepo:     donationRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		deduper:          deduper,
		notifier:         notifier,
		logger:           logger,
	}
}

// HandleEvent dispatches a document event to its handler. Delivery is
// at-least-once, so the processed-event marker is claimed up front; if the
// handler then fails with a retryable error the marker is released so the
// redelivery can run the handler again.
func (s *triggerService) HandleEvent(ctx context.Context, event *service.Event) error {
	logger := s.logger.With(
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
	)

	alreadyProcessed, err := s.deduper.CheckAndMarkProcessed(ctx, triggerConsumer, event.EventID)
	if err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to check processed-event marker"))
	}
	if alreadyProcessed {
		logger.Info("event already processed, acknowledging duplicate delivery")

		return nil
	}

	err = s.dispatch(ctx, logger, event)
	if err != nil && usecase.IsRetryableError(err) {
		if forgetErr := s.deduper.Forget(ctx, triggerConsumer, event.EventID); forgetErr != nil {
			logger.Error("failed to release processed-event marker", slog.Any("error", forgetErr))
		}
	}

	return err
}

func (s *triggerService) dispatch(ctx context.Context, logger *slog.Logger, event *service.Event) error {
	switch event.Type {
	case service.EventDonationCreated:
		return s.onDonationCreated(ctx, logger, event.Data)
	case service.EventDonationUpdated:
		return s.onDonationUpdated(ctx, logger, event.Data)
	case service.EventUserCreated:
		return s.onUserCreated(ctx, logger, event.Data)
	case service.EventNotificationCreated:
		return s.onNotificationCreated(ctx, logger, event.Data)
	default:
		logger.Warn("unknown event type, acknowledging without processing")

		return nil
	}
}

// onDonationCreated applies the creation counter deltas and fans the new
// listing out to every recipient.
func (s *triggerService) onDonationCreated(ctx context.Context, logger *slog.Logger, data json.RawMessage) error {
	var payload service.DonationCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Error("malformed donation created payload, dropping event", slog.Any("error", err))

		return nil
	}

	donationID, err := uuid.Parse(payload.DonationID)
	if err != nil {
		logger.Error("invalid donation ID in payload, dropping event", slog.String("donation_id", payload.DonationID))

		return nil
	}

	donation, err := s.donationRepo.FindDonationByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			logger.Warn("donation no longer exists, acknowledging event",
				slog.String("donation_id", payload.DonationID))

			return nil
		}

		return usecase.NewRetryableError(errors.Wrap(err, "failed to load donation"))
	}

	if err := s.applyDeltas(ctx, entity.DeltasForCreate(donation)); err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to apply creation deltas"))
	}

	recipientIDs, err := s.userRepo.FindUserIDsByRole(ctx, entity.RoleRecipient)
	if err != nil {
		// Counters are already applied and the marker is held, so a retry
		// would be skipped anyway. Log and acknowledge.
		logger.Error("failed to resolve recipients for fan-out", slog.Any("error", err))

		return nil
	}

	notified, err := s.notifier.NotifyMany(ctx, recipientIDs, newDonationMessage(donation))
	if err != nil {
		logger.Error("new donation fan-out finished with failures",
			slog.Int("notified", notified),
			slog.Int("audience", len(recipientIDs)),
			slog.Any("error", err),
		)

		return nil
	}

	logger.Info("new donation fan-out complete",
		slog.String("donation_id", donation.ID.String()),
		slog.Int("notified", notified),
	)

	return nil
}

// onDonationUpdated moves the donation between pool counters and notifies
// the parties affected by the transition.
func (s *triggerService) onDonationUpdated(ctx context.Context, logger *slog.Logger, data json.RawMessage) error {
	var payload service.DonationUpdatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Error("malformed donation updated payload, dropping event", slog.Any("error", err))

		return nil
	}

	oldStatus := entity.DonationStatus(payload.OldStatus)
	newStatus := entity.DonationStatus(payload.NewStatus)
	if oldStatus == newStatus {
		return nil
	}
	if !oldStatus.IsValid() || !newStatus.IsValid() {
		logger.Warn("unrecognized status in donation update, acknowledging event",
			slog.String("old_status", payload.OldStatus),
			slog.String("new_status", payload.NewStatus),
		)

		return nil
	}

	donationID, err := uuid.Parse(payload.DonationID)
	if err != nil {
		logger.Error("invalid donation ID in payload, dropping event", slog.String("donation_id", payload.DonationID))

		return nil
	}

	if err := s.applyDeltas(ctx, entity.DeltasForTransition(oldStatus, newStatus)); err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to apply transition deltas"))
	}

	donation, err := s.donationRepo.FindDonationByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			logger.Warn("donation no longer exists, skipping transition notifications",
				slog.String("donation_id", payload.DonationID))

			return nil
		}
		// Deltas are applied and the marker is held; notifications are lost
		// rather than risking a double count on redelivery.
		logger.Error("failed to load donation for transition notifications", slog.Any("error", err))

		return nil
	}

	s.notifyTransition(ctx, logger, donation, newStatus)

	return nil
}

// notifyTransition tells the donor and/or reserving recipient about a status change.
func (s *triggerService) notifyTransition(ctx context.Context, logger *slog.Logger, donation *entity.Donation, newStatus entity.DonationStatus) {
	var targets []notifyTarget

	switch newStatus {
	case entity.DonationReserved:
		targets = append(targets, notifyTarget{donation.DonorID, reservedMessage(donation)})
	case entity.DonationCompleted:
		targets = append(targets, notifyTarget{donation.DonorID, completedMessage(donation)})
		if donation.RecipientID != nil {
			targets = append(targets, notifyTarget{*donation.RecipientID, completedMessage(donation)})
		}
	case entity.DonationCancelled:
		if donation.RecipientID != nil {
			targets = append(targets, notifyTarget{*donation.RecipientID, cancelledMessage(donation)})
		}
	case entity.DonationExpired:
		targets = append(targets, notifyTarget{donation.DonorID, expiredMessage(donation)})
	}

	for _, target := range targets {
		if _, err := s.notifier.Notify(ctx, target.userID, target.msg); err != nil {
			logger.Error("failed to notify donation transition",
				slog.String("donation_id", donation.ID.String()),
				slog.String("user_id", target.userID.String()),
				slog.Any("error", err),
			)
		}
	}
}

type notifyTarget struct {
	userID uuid.UUID
	msg    *usecase.Message
}

// onUserCreated bumps the role counter and sends the welcome notification.
func (s *triggerService) onUserCreated(ctx context.Context, logger *slog.Logger, data json.RawMessage) error {
	var payload service.UserCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Error("malformed user created payload, dropping event", slog.Any("error", err))

		return nil
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		logger.Error("invalid user ID in payload, dropping event", slog.String("user_id", payload.UserID))

		return nil
	}

	role := entity.Role(payload.Role)
	if !role.IsValid() {
		logger.Warn("unrecognized role in user created event, acknowledging",
			slog.String("role", payload.Role))

		return nil
	}

	if err := s.applyDeltas(ctx, entity.DeltasForUserCreate(role)); err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to apply user creation delta"))
	}

	if _, err := s.notifier.Notify(ctx, userID, welcomeMessage()); err != nil {
		logger.Error("failed to send welcome notification",
			slog.String("user_id", payload.UserID),
			slog.Any("error", err),
		)
	}

	return nil
}

// onNotificationCreated pushes client-created notification records. Records
// written by this process carry SystemGenerated and were already pushed
// inline, so touching them again would loop.
func (s *triggerService) onNotificationCreated(ctx context.Context, logger *slog.Logger, data json.RawMessage) error {
	var payload service.NotificationCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Error("malformed notification created payload, dropping event", slog.Any("error", err))

		return nil
	}

	notificationID, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		logger.Error("invalid notification ID in payload, dropping event",
			slog.String("notification_id", payload.NotificationID))

		return nil
	}

	record, err := s.notificationRepo.FindNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			logger.Warn("notification no longer exists, acknowledging event",
				slog.String("notification_id", payload.NotificationID))

			return nil
		}

		return usecase.NewRetryableError(errors.Wrap(err, "failed to load notification"))
	}

	if record.SystemGenerated {
		logger.Debug("system-generated notification already pushed inline, skipping")

		return nil
	}

	return s.notifier.PushExisting(ctx, record)
}

// applyDeltas writes counter increments inside one transaction so a partial
// set of deltas never lands.
func (s *triggerService) applyDeltas(ctx context.Context, deltas []entity.CounterDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	return s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		return factory.NewAggregateRepository().ApplyDeltas(ctx, deltas)
	})
}

// --- Notification content ---

func newDonationMessage(donation *entity.Donation) *usecase.Message {
	return &usecase.Message{
		Type:     entity.NotificationNewDonation,
		Title:    "New donation available",
		Body:     fmt.Sprintf("%s (%.1f %s of %s) was just listed", donation.Title, donation.Quantity, donation.Unit, donation.Category),
		DeepLink: donationDeepLink(donation),
		Data:     map[string]string{"donation_id": donation.ID.String()},
	}
}

func reservedMessage(donation *entity.Donation) *usecase.Message {
	return &usecase.Message{
		Type:     entity.NotificationDonationReserved,
		Title:    "Your donation was reserved",
		Body:     fmt.Sprintf("A recipient reserved %q", donation.Title),
		DeepLink: donationDeepLink(donation),
	}
}

func completedMessage(donation *entity.Donation) *usecase.Message {
	return &usecase.Message{
		Type:     entity.NotificationDonationCompleted,
		Title:    "Donation completed",
		Body:     fmt.Sprintf("%q has been picked up. Thank you!", donation.Title),
		DeepLink: donationDeepLink(donation),
	}
}

func cancelledMessage(donation *entity.Donation) *usecase.Message {
	return &usecase.Message{
		Type:     entity.NotificationDonationCancelled,
		Title:    "Donation cancelled",
		Body:     fmt.Sprintf("%q is no longer available", donation.Title),
		DeepLink: donationDeepLink(donation),
	}
}

func expiredMessage(donation *entity.Donation) *usecase.Message {
	return &usecase.Message{
		Type:     entity.NotificationDonationExpired,
		Title:    "Your donation expired",
		Body:     fmt.Sprintf("%q passed its expiry time and was removed from the active pool", donation.Title),
		DeepLink: donationDeepLink(donation),
	}
}

func welcomeMessage() *usecase.Message {
	return &usecase.Message{
		Type:  entity.NotificationWelcome,
		Title: "Welcome to FoodBridge",
		Body:  "Thanks for joining. List surplus food or browse donations near you.",
	}
}

func donationDeepLink(donation *entity.Donation) string {
	return "foodbridge://donations/" + donation.ID.String()
}
