package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"realty-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	PostMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, roomID int) ([]models.Message, error)
	LastMessage(ctx context.Context, roomID int) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// PostMessage stores a message in a room. The insert is gated on the
// sender's membership in the same statement, so a non-member post never
// persists anything. Returns ErrRoomNotFound or ErrNotMember on rejection;
// callers surface both identically to clients.
func (r *MessageRepo) PostMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	var msg models.Message
	query := `INSERT INTO messages (room_id, sender_id, content)
        SELECT $1, $2, $3
        WHERE EXISTS (SELECT 1 FROM room_members WHERE room_id=$1 AND user_id=$2)
        RETURNING id, room_id, sender_id, content, is_read, created_at`
	err := r.db.QueryRowxContext(ctx, query, roomID, senderID, content).
		Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.IsRead, &msg.CreatedAt)
	if err == nil {
		return msg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, err
	}

	var roomExists bool
	if err := r.db.GetContext(ctx, &roomExists, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, roomID); err != nil {
		return models.Message{}, err
	}
	if !roomExists {
		return models.Message{}, ErrRoomNotFound
	}
	return models.Message{}, ErrNotMember
}

// ListMessages returns the full history of a room in creation order.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID int) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT id, room_id, sender_id, content, is_read, created_at
        FROM messages WHERE room_id=$1 ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &msgs, query, roomID)
	return msgs, err
}

// LastMessage returns the newest message of a room.
func (r *MessageRepo) LastMessage(ctx context.Context, roomID int) (models.Message, error) {
	var msg models.Message
	query := `SELECT id, room_id, sender_id, content, is_read, created_at
        FROM messages WHERE room_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`
	err := r.db.GetContext(ctx, &msg, query, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
