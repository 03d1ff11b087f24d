package usecase

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// DonationInput represents the fields a donor supplies when listing surplus food
type DonationInput struct {
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StatusChange represents a requested donation status transition
type StatusChange struct {
	NewStatus   entity.DonationStatus `json:"new_status"`
	RecipientID *uuid.UUID            `json:"recipient_id,omitempty"`
}

// DonationUsecase defines the interface for donation management use cases
type DonationUsecase interface {
	// CreateDonation lists a new donation and publishes the creation event
	CreateDonation(ctx context.Context, donorID uuid.UUID, input *DonationInput) (*entity.Donation, error)

	// GetDonation retrieves a donation by ID
	GetDonation(ctx context.Context, id uuid.UUID) (*entity.Donation, error)

	// ChangeDonationStatus validates and applies a status transition, then
	// publishes the update event carrying both old and new status
	ChangeDonationStatus(ctx context.Context, id uuid.UUID, change *StatusChange) (*entity.Donation, error)
}
