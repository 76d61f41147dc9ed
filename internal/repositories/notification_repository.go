package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"realty-chat-service/internal/models"
)

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, recipientID int, notificationType string, title string, body string, relatedPropertyID *int) (models.Notification, error)
	ListForUser(ctx context.Context, userID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores a notification row for a recipient.
func (r *NotificationRepo) Create(ctx context.Context, recipientID int, notificationType string, title string, body string, relatedPropertyID *int) (models.Notification, error) {
	var related sql.NullInt64
	if relatedPropertyID != nil {
		related = sql.NullInt64{Int64: int64(*relatedPropertyID), Valid: true}
	}

	var n models.Notification
	query := `INSERT INTO notifications (recipient_id, notification_type, title, body, related_property_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, recipient_id, notification_type, title, body, related_property_id, is_read, created_at`
	err := r.db.GetContext(ctx, &n, query, recipientID, notificationType, title, body, related)
	return n, err
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	var list []models.Notification
	query := `SELECT id, recipient_id, notification_type, title, body, related_property_id, is_read, created_at
        FROM notifications WHERE recipient_id=$1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &list, query, userID)
	return list, err
}

// MarkRead flags one of the user's notifications as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id=$1 AND recipient_id=$2`, notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead flags every notification of the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE recipient_id=$1`, userID)
	return err
}
