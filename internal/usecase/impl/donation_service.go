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

type donationService struct {
	donationRepo repository.DonationRepository
	userRepo     repository.UserRepository
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// NewDonationService creates a new donation service instance
func NewDonationService(
	donationRepo repository.DonationRepository,
	userRepo repository.UserRepository,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.DonationUsecase {
	return &donationService{
		donationRepo: donationRepo,
		userRepo:     userRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateDonation lists a new donation and publishes the creation event.
// The listing enters the open pool as pending.
func (s *donationService) CreateDonation(ctx context.Context, donorID uuid.UUID, input *usecase.DonationInput) (*entity.Donation, error) {
	if input.Quantity <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("quantity must be positive")
	}
	if !input.ExpiresAt.After(time.Now()) {
		return nil, domainerrors.ErrDonationExpiryInPast
	}

	donor, err := s.userRepo.FindUserByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to verify donor")
	}
	if donor.Role != entity.RoleDonor {
		return nil, domainerrors.ErrForbidden.WithDetails("only donors can list donations")
	}

	unit := input.Unit
	if unit == "" {
		unit = "kg"
	}

	donation := &entity.Donation{
		ID:        uuid.New(),
		DonorID:   donorID,
		Title:     input.Title,
		Category:  input.Category,
		Quantity:  input.Quantity,
		Unit:      unit,
		Status:    entity.DonationPending,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.donationRepo.CreateDonation(ctx, donation); err != nil {
		return nil, errors.Wrap(err, "failed to create donation")
	}

	s.publishEvent(ctx, service.EventDonationCreated, &service.DonationCreatedEvent{
		DonationID: donation.ID.String(),
	})

	return donation, nil
}

// GetDonation retrieves a donation by ID
func (s *donationService) GetDonation(ctx context.Context, id uuid.UUID) (*entity.Donation, error) {
	donation, err := s.donationRepo.FindDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return nil, domainerrors.ErrDonationNotFound
		}

		return nil, errors.Wrap(err, "failed to find donation")
	}

	return donation, nil
}

// ChangeDonationStatus validates and applies a status transition, then
// publishes the update event carrying both old and new status. Terminal
// donations never reopen; the transition table in the entity package is the
// single source of legality.
func (s *donationService) ChangeDonationStatus(ctx context.Context, id uuid.UUID, change *usecase.StatusChange) (*entity.Donation, error) {
	donation, err := s.donationRepo.FindDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return nil, domainerrors.ErrDonationNotFound
		}

		return nil, errors.Wrap(err, "failed to find donation")
	}

	newStatus := change.NewStatus
	if !newStatus.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown donation status: " + string(newStatus))
	}
	if !entity.CanTransition(donation.Status, newStatus) {
		return nil, domainerrors.ErrInvalidStatusTransition.WithDetails(
			string(donation.Status) + " -> " + string(newStatus))
	}
	if newStatus == entity.DonationReserved && change.RecipientID == nil {
		return nil, domainerrors.ErrRecipientRequired
	}

	now := time.Now()
	if err := s.donationRepo.UpdateDonationStatus(ctx, id, newStatus, change.RecipientID, now); err != nil {
		return nil, errors.Wrap(err, "failed to update donation status")
	}

	oldStatus := donation.Status
	donation.Status = newStatus
	donation.UpdatedAt = now
	switch newStatus {
	case entity.DonationReserved:
		donation.RecipientID = change.RecipientID
		donation.ReservedAt = &now
	case entity.DonationCompleted:
		donation.CompletedAt = &now
	}

	s.publishEvent(ctx, service.EventDonationUpdated, &service.DonationUpdatedEvent{
		DonationID: donation.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
	})

	return donation, nil
}

// publishEvent emits a document event. Publish failures are logged rather
// than surfaced: the state change already committed, and the sweep and
// read paths keep the system convergent without the event.
func (s *donationService) publishEvent(ctx context.Context, eventType service.EventType, payload any) {
	event, err := service.NewEvent(uuid.NewString(), eventType, deliverycontext.GetRequestIDFromContext(ctx), payload)
	if err != nil {
		s.logger.Error("failed to build event", slog.String("event_type", string(eventType)), slog.Any("error", err))

		return
	}

	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish event",
			slog.String("event_type", string(eventType)),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}
