package models

import (
	"database/sql"
	"time"
)

// Inquiry statuses.
const (
	InquiryPending    = "PENDING"
	InquiryInProgress = "IN_PROGRESS"
	InquiryResolved   = "RESOLVED"
	InquiryClosed     = "CLOSED"
)

// Inquiry is a buyer's question about a listing. Creating one opens (or
// reuses) the INQUIRY room between the inquirer and the listing owner.
type Inquiry struct {
	ID         int           `db:"id" json:"id"`
	PropertyID int           `db:"property_id" json:"property_id"`
	InquirerID int           `db:"inquirer_id" json:"inquirer_id"`
	Subject    string        `db:"subject" json:"subject"`
	Message    string        `db:"message" json:"message"`
	Status     string        `db:"status" json:"status"`
	RoomID     sql.NullInt64 `db:"room_id" json:"-"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// RoomRef exposes the linked chat room id for JSON responses.
func (i Inquiry) RoomRef() *int {
	if !i.RoomID.Valid {
		return nil
	}
	id := int(i.RoomID.Int64)
	return &id
}
