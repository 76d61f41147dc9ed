package models

import (
	"database/sql"
	"time"
)

// Notification types.
const (
	NotificationPropertyCreated = "PROPERTY_CREATED"
	NotificationPropertyUpdated = "PROPERTY_UPDATED"
	NotificationPropertyDeleted = "PROPERTY_DELETED"
	NotificationChatMessage     = "CHAT_MESSAGE"
	NotificationPayment         = "PAYMENT"
	NotificationSystem          = "SYSTEM"
)

// Notification is a persisted per-user notification row.
type Notification struct {
	ID                int           `db:"id" json:"id"`
	RecipientID       int           `db:"recipient_id" json:"recipient_id"`
	NotificationType  string        `db:"notification_type" json:"notification_type"`
	Title             string        `db:"title" json:"title"`
	Body              string        `db:"body" json:"body"`
	RelatedPropertyID sql.NullInt64 `db:"related_property_id" json:"-"`
	IsRead            bool          `db:"is_read" json:"is_read"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}

// PropertyRef exposes the nullable related property id for JSON responses.
func (n Notification) PropertyRef() *int {
	if !n.RelatedPropertyID.Valid {
		return nil
	}
	id := int(n.RelatedPropertyID.Int64)
	return &id
}
