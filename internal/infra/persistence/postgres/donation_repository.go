// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// donationRepository implements the repository.DonationRepository interface.
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository is the constructor for donationRepository.
func NewDonationRepository(db *gorm.DB) repository.DonationRepository {
	return &donationRepository{
		db: db,
	}
}

// CreateDonation persists a new donation listing.
func (repo *donationRepository) CreateDonation(ctx context.Context, donation *entity.Donation) error {
	donationM := fromDonationDomain(donation)

	if err := repo.db.WithContext(ctx).Create(donationM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid donor reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required donation information")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("donation violates a database constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create donation")
	}

	// Update the entity with generated values
	donation.ID = donationM.ID
	donation.CreatedAt = donationM.CreatedAt
	donation.UpdatedAt = donationM.UpdatedAt

	return nil
}

// FindDonationByID retrieves a donation by its unique ID.
func (repo *donationRepository) FindDonationByID(ctx context.Context, id uuid.UUID) (*entity.Donation, error) {
	var donationM model.DonationModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDonationNotFound
		}

		return nil, errors.Wrap(err, "failed to find donation by ID")
	}

	return toDonationDomain(&donationM), nil
}

// UpdateDonationStatus transitions a donation to a new status. The reserved
// and completed timestamps are only written on the transitions that imply
// them; the recipient is recorded on reservation.
func (repo *donationRepository) UpdateDonationStatus(ctx context.Context, id uuid.UUID, status entity.DonationStatus, recipientID *uuid.UUID, at time.Time) error {
	updates := map[string]any{
		"status":     string(status),
		"updated_at": at,
	}

	switch status {
	case entity.DonationReserved:
		updates["recipient_id"] = recipientID
		updates["reserved_at"] = at
	case entity.DonationCompleted:
		updates["completed_at"] = at
	}

	result := repo.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update donation status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrDonationNotFound
	}

	return nil
}

// FindOpenDonationsExpiredBefore retrieves pending/active donations whose
// expiry timestamp is before the cutoff.
func (repo *donationRepository) FindOpenDonationsExpiredBefore(ctx context.Context, cutoff time.Time) ([]*entity.Donation, error) {
	var donationModels []*model.DonationModel

	if err := repo.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?", openStatuses(), cutoff).
		Order("expires_at ASC").
		Find(&donationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find expired open donations")
	}

	donations := make([]*entity.Donation, 0, len(donationModels))
	for _, donationM := range donationModels {
		donations = append(donations, toDonationDomain(donationM))
	}

	return donations, nil
}

// BatchExpireDonations transitions the given donations to expired in one
// batched UPDATE. The status predicate is repeated here so a donation that
// was reserved or cancelled between the sweep's read and this write is left
// alone; the returned count reflects rows actually flipped.
func (repo *donationRepository) BatchExpireDonations(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("id IN ? AND status IN ?", ids, openStatuses()).
		Updates(map[string]any{
			"status":     string(entity.DonationExpired),
			"updated_at": at,
		})

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to batch expire donations")
	}

	return result.RowsAffected, nil
}

// openStatuses returns the statuses of the open pool as SQL values.
func openStatuses() []string {
	return []string{string(entity.DonationPending), string(entity.DonationActive)}
}

// --- Mapper Functions ---

// toDonationDomain converts a GORM DonationModel to a domain Donation entity.
func toDonationDomain(data *model.DonationModel) *entity.Donation {
	if data == nil {
		return nil
	}

	return &entity.Donation{
		ID:          data.ID,
		DonorID:     data.DonorID,
		RecipientID: data.RecipientID,
		Title:       data.Title,
		Category:    data.Category,
		Quantity:    data.Quantity,
		Unit:        data.Unit,
		Status:      entity.DonationStatus(data.Status),
		ExpiresAt:   data.ExpiresAt,
		ReservedAt:  data.ReservedAt,
		CompletedAt: data.CompletedAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromDonationDomain converts a domain Donation entity to a GORM DonationModel.
func fromDonationDomain(data *entity.Donation) *model.DonationModel {
	if data == nil {
		return nil
	}

	return &model.DonationModel{
		ID:          data.ID,
		DonorID:     data.DonorID,
		RecipientID: data.RecipientID,
		Title:       data.Title,
		Category:    data.Category,
		Quantity:    data.Quantity,
		Unit:        data.Unit,
		Status:      string(data.Status),
		ExpiresAt:   data.ExpiresAt,
		ReservedAt:  data.ReservedAt,
		CompletedAt: data.CompletedAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
