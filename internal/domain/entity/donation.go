// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DonationStatus represents the lifecycle state of a donation listing.
type DonationStatus string

const (
	// DonationPending indicates a listing that is created but not yet visible.
	DonationPending DonationStatus = "pending"
	// DonationActive indicates a listing that recipients can browse and reserve.
	DonationActive DonationStatus = "active"
	// DonationReserved indicates a listing claimed by a recipient, pending pickup.
	DonationReserved DonationStatus = "reserved"
	// DonationCompleted indicates a fulfilled donation. Terminal.
	DonationCompleted DonationStatus = "completed"
	// DonationExpired indicates a listing whose deadline passed unreserved. Terminal.
	DonationExpired DonationStatus = "expired"
	// DonationCancelled indicates a listing withdrawn by the donor. Terminal.
	DonationCancelled DonationStatus = "cancelled"
)

// String returns the string representation of the DonationStatus.
func (s DonationStatus) String() string {
	return string(s)
}

// IsValid checks if the DonationStatus is a valid value.
func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationPending, DonationActive, DonationReserved,
		DonationCompleted, DonationExpired, DonationCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status can never transition again.
// A completed, expired, or cancelled donation never reopens.
func (s DonationStatus) IsTerminal() bool {
	switch s {
	case DonationCompleted, DonationExpired, DonationCancelled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the donation still counts toward the active pool.
// Pending and active listings share one pool: both are unreserved and sweepable.
func (s DonationStatus) IsOpen() bool {
	return s == DonationPending || s == DonationActive
}

type statusSet map[DonationStatus]struct{}

func newStatusSet(statuses ...DonationStatus) statusSet {
	set := make(statusSet, len(statuses))
	for _, status := range statuses {
		set[status] = struct{}{}
	}

	return set
}

func (set statusSet) contains(status DonationStatus) bool {
	_, ok := set[status]

	return ok
}

// statusTransitions is the closed table of legal forward transitions.
// Keyed by target status; the value is the set of statuses it may come from.
var statusTransitions = map[DonationStatus]statusSet{
	DonationActive:    newStatusSet(DonationPending),
	DonationReserved:  newStatusSet(DonationPending, DonationActive),
	DonationCompleted: newStatusSet(DonationReserved),
	DonationExpired:   newStatusSet(DonationPending, DonationActive),
	DonationCancelled: newStatusSet(DonationPending, DonationActive, DonationReserved),
}

// CanTransition reports whether from -> to is a legal forward transition.
func CanTransition(from, to DonationStatus) bool {
	fromSet, ok := statusTransitions[to]
	if !ok {
		return false
	}

	return fromSet.contains(from)
}

// Donation represents a listed unit of surplus food.
type Donation struct {
	ID          uuid.UUID      `json:"id"`           // The unique identifier for the donation.
	DonorID     uuid.UUID      `json:"donor_id"`     // The user who listed the donation.
	Title       string         `json:"title"`        // Short human-readable description of the food.
	Category    string         `json:"category"`     // Food category used for impact factors and bucket counters.
	Quantity    float64        `json:"quantity"`     // Amount of food, always positive.
	Unit        string         `json:"unit"`         // Unit for Quantity (kg, servings, boxes).
	Status      DonationStatus `json:"status"`       // Current lifecycle status.
	ExpiresAt   time.Time      `json:"expires_at"`   // Deadline after which the sweep expires the listing.
	RecipientID *uuid.UUID     `json:"recipient_id"` // The reserving recipient, set on the reserved transition.
	ReservedAt  *time.Time     `json:"reserved_at"`  // When the donation was reserved.
	CompletedAt *time.Time     `json:"completed_at"` // When the donation was completed.
	CreatedAt   time.Time      `json:"created_at"`   // When the listing was created.
	UpdatedAt   time.Time      `json:"updated_at"`   // Timestamp of the last modification.
}
