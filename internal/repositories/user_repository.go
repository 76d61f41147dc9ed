package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"realty-chat-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the read-only identity store.
type UserRepository interface {
	GetUser(ctx context.Context, userID int) (models.User, error)
	BulkUsers(ctx context.Context, ids []int) ([]models.User, error)
	ListActiveUserIDs(ctx context.Context) ([]int, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches one user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, full_name, email, is_active, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkUsers fetches multiple users in one query.
func (r *UserRepo) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, full_name, email, is_active, created_at FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var users []models.User
	err = r.db.SelectContext(ctx, &users, query, args...)
	return users, err
}

// ListActiveUserIDs returns the ids of every active account, used to fan
// property lifecycle notifications out.
func (r *UserRepo) ListActiveUserIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE is_active = TRUE ORDER BY id`)
	return ids, err
}
