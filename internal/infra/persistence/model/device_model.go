package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDeviceModel is the GORM-specific struct for the 'user_devices' table.
// A device belongs to one user; the (user_id, device_id) pair is unique so a
// re-registered device surfaces as a constraint violation rather than a
// second row. Invalid devices are flipped inactive, never deleted.
type UserDeviceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_device;index:idx_user_active,priority:1"`
	DeviceID  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_device"`
	FCMToken  string    `gorm:"type:varchar(512);not null"`
	Platform  string    `gorm:"type:varchar(50);not null"`
	IsActive  bool      `gorm:"not null;default:true;index:idx_user_active,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (UserDeviceModel) TableName() string {
	return "user_devices"
}
