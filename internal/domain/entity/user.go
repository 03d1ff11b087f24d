// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a unique account in the marketplace. A user acts as a
// donor listing surplus food or a recipient reserving it.
type User struct {
	ID        uuid.UUID `json:"id"`         // The unique identifier for the user.
	Email     string    `json:"email"`      // The user's primary contact email.
	Name      string    `json:"name"`       // The user's display name.
	Role      Role      `json:"role"`       // Whether the user donates or receives.
	CreatedAt time.Time `json:"created_at"` // Timestamp of when this account was created.
	UpdatedAt time.Time `json:"updated_at"` // Timestamp of the last modification.
}
