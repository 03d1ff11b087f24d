package usecase

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// UserInput represents the fields supplied at registration
type UserInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UserUsecase defines the interface for user account use cases
type UserUsecase interface {
	// RegisterUser creates a new account and publishes the creation event
	RegisterUser(ctx context.Context, input *UserInput) (*entity.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
