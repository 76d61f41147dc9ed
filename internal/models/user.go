package models

import "time"

// User is the identity-store view of an account. Registration and profile
// management live in another service; this service only reads.
type User struct {
	ID        int       `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
