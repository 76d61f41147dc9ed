package models

import (
	"database/sql"
	"time"
)

// Room types.
const (
	RoomTypeDirect  = "DIRECT"
	RoomTypeInquiry = "INQUIRY"
)

// Room is a conversation. INQUIRY rooms are bound to a listing; DIRECT
// rooms are bound to an unordered user pair canonicalized into DirectKey.
type Room struct {
	ID         int            `db:"id" json:"id"`
	RoomType   string         `db:"room_type" json:"room_type"`
	PropertyID sql.NullInt64  `db:"property_id" json:"-"`
	DirectKey  sql.NullString `db:"direct_key" json:"-"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// PropertyRef exposes the nullable listing id for JSON responses.
func (r Room) PropertyRef() *int {
	if !r.PropertyID.Valid {
		return nil
	}
	id := int(r.PropertyID.Int64)
	return &id
}

// RoomMember is one user's membership row, carrying their read cursor.
type RoomMember struct {
	RoomID   int          `db:"room_id" json:"room_id"`
	UserID   int          `db:"user_id" json:"user_id"`
	LastRead sql.NullTime `db:"last_read" json:"-"`
	JoinedAt time.Time    `db:"joined_at" json:"joined_at"`
}

// MemberProfile is the member block inside a room summary.
type MemberProfile struct {
	ID       int        `json:"id"`
	FullName string     `json:"full_name"`
	LastRead *time.Time `json:"last_read"`
	JoinedAt time.Time  `json:"joined_at"`
}

// RoomSummary is the room-list view: the room, its members, the latest
// message and the caller's unread count.
type RoomSummary struct {
	ID          int             `json:"id"`
	RoomType    string          `json:"room_type"`
	PropertyID  *int            `json:"property_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Members     []MemberProfile `json:"members"`
	LastMessage *MessagePayload `json:"last_message"`
	UnreadCount int             `json:"unread_count"`
}
