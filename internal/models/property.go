package models

import "time"

// Property is the read-only view of a listing this service needs: listing
// CRUD, geocoding and media live in the properties service, which owns the
// table. Only the owner and title are consulted here, to route inquiries
// and label notifications.
type Property struct {
	ID        int       `db:"id" json:"id"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
