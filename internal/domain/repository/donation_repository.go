// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for donation persistence.
var (
	// ErrDonationNotFound is returned when a donation is not found.
	ErrDonationNotFound = errors.New("donation not found")
)

// DonationRepository defines the interface for donation-related database operations.
type DonationRepository interface {
	// CreateDonation persists a new donation listing.
	CreateDonation(ctx context.Context, donation *entity.Donation) error

	// FindDonationByID retrieves a donation by its unique ID.
	FindDonationByID(ctx context.Context, id uuid.UUID) (*entity.Donation, error)

	// UpdateDonationStatus transitions a donation to a new status, recording
	// the reserving recipient and the reserved/completed timestamps where the
	// transition implies them.
	UpdateDonationStatus(ctx context.Context, id uuid.UUID, status entity.DonationStatus, recipientID *uuid.UUID, at time.Time) error

	// FindOpenDonationsExpiredBefore retrieves pending/active donations whose
	// expiry timestamp is before the cutoff. Used by the expiry sweep.
	FindOpenDonationsExpiredBefore(ctx context.Context, cutoff time.Time) ([]*entity.Donation, error)

	// BatchExpireDonations transitions the given set of donations to expired
	// in a single batched write. It only touches rows still in the open pool,
	// and returns the number of rows actually transitioned.
	BatchExpireDonations(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
}
