package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"realty-chat-service/internal/models"
)

var ErrPropertyNotFound = errors.New("property not found")

// PropertyRepository resolves listing ownership. The properties service
// owns the table; this side only reads.
type PropertyRepository interface {
	GetProperty(ctx context.Context, propertyID int) (models.Property, error)
}

// PropertyRepo is a sqlx implementation of PropertyRepository.
type PropertyRepo struct {
	db *sqlx.DB
}

// NewPropertyRepo constructs a PropertyRepo.
func NewPropertyRepo(db *sqlx.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

// GetProperty fetches a listing by id.
func (r *PropertyRepo) GetProperty(ctx context.Context, propertyID int) (models.Property, error) {
	var property models.Property
	err := r.db.GetContext(ctx, &property, `SELECT id, owner_id, title, created_at FROM properties WHERE id=$1`, propertyID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Property{}, ErrPropertyNotFound
	}
	return property, err
}
