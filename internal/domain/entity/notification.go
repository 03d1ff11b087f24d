// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags a notification with the event that produced it.
type NotificationType string

const (
	// NotificationNewDonation announces a freshly listed donation to recipients.
	NotificationNewDonation NotificationType = "new_donation"
	// NotificationDonationReserved tells a donor their listing was reserved.
	NotificationDonationReserved NotificationType = "donation_reserved"
	// NotificationDonationCompleted confirms a fulfilled donation to both parties.
	NotificationDonationCompleted NotificationType = "donation_completed"
	// NotificationDonationCancelled tells the reserving recipient the listing was withdrawn.
	NotificationDonationCancelled NotificationType = "donation_cancelled"
	// NotificationDonationExpired tells a donor the sweep expired their listing.
	NotificationDonationExpired NotificationType = "donation_expired"
	// NotificationWelcome greets a newly registered user.
	NotificationWelcome NotificationType = "welcome"
	// NotificationMessage is a client-created notification (e.g. chat).
	NotificationMessage NotificationType = "message"
)

// NotificationRecord is the persisted in-app notification. It is the source
// of truth for "did the user get notified"; push delivery is best-effort.
type NotificationRecord struct {
	ID     uuid.UUID        `json:"id"`      // The unique identifier for the notification.
	UserID uuid.UUID        `json:"user_id"` // The addressee.
	Type   NotificationType `json:"type"`    // What kind of event produced this record.
	Title  string           `json:"title"`   // Push and inbox title.
	Body   string           `json:"body"`    // Message text.
	// DeepLink optionally points the client at the related resource.
	DeepLink string `json:"deep_link,omitempty"`
	// Read is the only field a user mutates after creation.
	Read bool `json:"read"`
	// SystemGenerated marks records written by trigger handlers, which push
	// inline; the notification-created trigger skips them to avoid a
	// re-notification loop.
	SystemGenerated bool      `json:"system_generated"`
	CreatedAt       time.Time `json:"created_at"` // Timestamp of when this record was created.
}
