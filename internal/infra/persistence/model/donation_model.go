package model

import (
	"time"

	"github.com/google/uuid"
)

// DonationModel is the GORM-specific struct for the 'donations' table.
// It represents a food donation listing published by a donor.
type DonationModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	DonorID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID *uuid.UUID `gorm:"type:uuid;index"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Category    string     `gorm:"type:varchar(50);not null;index"`
	Quantity    float64    `gorm:"type:decimal(10,2);not null"`
	Unit        string     `gorm:"type:varchar(20);not null;default:'kg'"`
	Status      string     `gorm:"type:varchar(20);not null;index"`
	ExpiresAt   time.Time  `gorm:"not null;index"`
	ReservedAt  *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (DonationModel) TableName() string {
	return "donations"
}
