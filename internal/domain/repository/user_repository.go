// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when the email is already registered.
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *entity.User) error

	// FindUserByID retrieves a user by its unique ID.
	FindUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindUserIDsByRole retrieves the IDs of every user holding a role.
	// Used for the new-donation fan-out to all recipients.
	FindUserIDsByRole(ctx context.Context, role entity.Role) ([]uuid.UUID, error)
}
