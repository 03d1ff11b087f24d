package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationModel is the GORM-specific struct for the 'notifications' table.
// It represents an in-app notification delivered to a single user.
type NotificationModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Type            string    `gorm:"type:varchar(50);not null"`
	Title           string    `gorm:"type:text;not null"`
	Body            string    `gorm:"type:text;not null"`
	DeepLink        string    `gorm:"type:text"`
	Read            bool      `gorm:"not null;default:false"`
	SystemGenerated bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationModel) TableName() string {
	return "notifications"
}
