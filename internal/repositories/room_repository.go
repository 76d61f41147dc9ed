package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"realty-chat-service/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotMember    = errors.New("not a room member")
)

// RoomRepository abstracts room and membership persistence.
type RoomRepository interface {
	CreateOrGetInquiryRoom(ctx context.Context, propertyID int) (models.Room, error)
	CreateOrGetDirectRoom(ctx context.Context, userID int, otherID int) (models.Room, error)
	GetRoom(ctx context.Context, roomID int) (models.Room, error)
	AddMember(ctx context.Context, roomID int, userID int) error
	IsMember(ctx context.Context, roomID int, userID int) (bool, error)
	ListMembers(ctx context.Context, roomID int) ([]models.RoomMember, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error)
	MarkRead(ctx context.Context, roomID int, userID int, asOf time.Time) error
	UnreadCount(ctx context.Context, roomID int, userID int) (int, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, room_type, property_id, direct_key, created_at`

// CreateOrGetInquiryRoom returns the INQUIRY room for a listing, creating
// it if absent. Concurrent calls for the same listing are serialized by the
// partial unique index on (property_id): the insert is ON CONFLICT DO
// NOTHING and the loser of a race re-reads the winner's row.
func (r *RoomRepo) CreateOrGetInquiryRoom(ctx context.Context, propertyID int) (models.Room, error) {
	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_type='INQUIRY' AND property_id=$1`
	err := r.db.GetContext(ctx, &room, query, propertyID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	insert := `INSERT INTO rooms (room_type, property_id) VALUES ('INQUIRY', $1)
        ON CONFLICT (property_id) WHERE room_type='INQUIRY' DO NOTHING
        RETURNING ` + roomColumns
	err = r.db.GetContext(ctx, &room, insert, propertyID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	// Lost the race; the winner's row exists now.
	err = r.db.GetContext(ctx, &room, query, propertyID)
	return room, err
}

// CreateOrGetDirectRoom returns the DIRECT room for an unordered user pair,
// creating it if absent. The pair is canonicalized into direct_key so the
// partial unique index guards concurrent creation the same way.
func (r *RoomRepo) CreateOrGetDirectRoom(ctx context.Context, userID int, otherID int) (models.Room, error) {
	if userID == otherID {
		return models.Room{}, errors.New("cannot create direct room with self")
	}
	lo, hi := userID, otherID
	if lo > hi {
		lo, hi = hi, lo
	}
	key := fmt.Sprintf("%d:%d", lo, hi)

	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_type='DIRECT' AND direct_key=$1`
	err := r.db.GetContext(ctx, &room, query, key)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	insert := `INSERT INTO rooms (room_type, direct_key) VALUES ('DIRECT', $1)
        ON CONFLICT (direct_key) WHERE room_type='DIRECT' DO NOTHING
        RETURNING ` + roomColumns
	err = r.db.GetContext(ctx, &room, insert, key)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	err = r.db.GetContext(ctx, &room, query, key)
	return room, err
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// AddMember adds a user to a room. Adding an existing member is a no-op.
func (r *RoomRepo) AddMember(ctx context.Context, roomID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)
        ON CONFLICT (room_id, user_id) DO NOTHING`, roomID, userID)
	return err
}

// IsMember checks whether a user belongs to the room.
func (r *RoomRepo) IsMember(ctx context.Context, roomID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// ListMembers returns all memberships of a room.
func (r *RoomRepo) ListMembers(ctx context.Context, roomID int) ([]models.RoomMember, error) {
	var members []models.RoomMember
	err := r.db.SelectContext(ctx, &members, `SELECT room_id, user_id, last_read, joined_at
        FROM room_members WHERE room_id=$1 ORDER BY joined_at ASC`, roomID)
	return members, err
}

// ListRoomsForUser returns the rooms the user belongs to, newest first.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error) {
	var rooms []models.Room
	query := `SELECT r.id, r.room_type, r.property_id, r.direct_key, r.created_at
        FROM rooms r JOIN room_members rm ON rm.room_id = r.id
        WHERE rm.user_id=$1
        ORDER BY r.created_at DESC`
	err := r.db.SelectContext(ctx, &rooms, query, userID)
	return rooms, err
}

// MarkRead moves the user's read cursor to asOf and flips the read flag on
// every message in the room authored by someone else up to that moment.
// Messages the user authored are never touched. The membership row is
// created on the fly if the user never had one.
func (r *RoomRepo) MarkRead(ctx context.Context, roomID int, userID int, asOf time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO room_members (room_id, user_id, last_read) VALUES ($1, $2, $3)
        ON CONFLICT (room_id, user_id) DO UPDATE SET last_read = EXCLUDED.last_read`, roomID, userID, asOf); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE messages SET is_read = TRUE
        WHERE room_id=$1 AND sender_id<>$2 AND created_at<=$3 AND is_read = FALSE`, roomID, userID, asOf); err != nil {
		return err
	}

	return tx.Commit()
}

// UnreadCount counts messages from other members past the user's read
// cursor; with no cursor yet, every message from others counts.
func (r *RoomRepo) UnreadCount(ctx context.Context, roomID int, userID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages m
        JOIN room_members rm ON rm.room_id = m.room_id AND rm.user_id=$2
        WHERE m.room_id=$1 AND m.sender_id<>$2
        AND (rm.last_read IS NULL OR m.created_at > rm.last_read)`
	err := r.db.GetContext(ctx, &count, query, roomID, userID)
	return count, err
}
