package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"realty-chat-service/internal/models"
)

// InquiryRepository persists property inquiries.
type InquiryRepository interface {
	CreateInquiry(ctx context.Context, propertyID int, inquirerID int, subject string, message string) (models.Inquiry, error)
	LinkRoom(ctx context.Context, inquiryID int, roomID int) error
	ListForInquirer(ctx context.Context, userID int) ([]models.Inquiry, error)
	ListForOwner(ctx context.Context, ownerID int) ([]models.Inquiry, error)
}

// InquiryRepo is a sqlx implementation of InquiryRepository.
type InquiryRepo struct {
	db *sqlx.DB
}

// NewInquiryRepo constructs an InquiryRepo.
func NewInquiryRepo(db *sqlx.DB) *InquiryRepo {
	return &InquiryRepo{db: db}
}

const inquiryColumns = `id, property_id, inquirer_id, subject, message, status, room_id, created_at, updated_at`

// CreateInquiry stores a new inquiry in PENDING state.
func (r *InquiryRepo) CreateInquiry(ctx context.Context, propertyID int, inquirerID int, subject string, message string) (models.Inquiry, error) {
	var inquiry models.Inquiry
	query := `INSERT INTO inquiries (property_id, inquirer_id, subject, message)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + inquiryColumns
	err := r.db.GetContext(ctx, &inquiry, query, propertyID, inquirerID, subject, message)
	return inquiry, err
}

// LinkRoom attaches the conversation room created for the inquiry.
func (r *InquiryRepo) LinkRoom(ctx context.Context, inquiryID int, roomID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE inquiries SET room_id=$2, updated_at=NOW() WHERE id=$1`, inquiryID, roomID)
	return err
}

// ListForInquirer returns the inquiries a user has submitted.
func (r *InquiryRepo) ListForInquirer(ctx context.Context, userID int) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE inquirer_id=$1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &inquiries, query, userID)
	return inquiries, err
}

// ListForOwner returns the inquiries on a user's listings.
func (r *InquiryRepo) ListForOwner(ctx context.Context, ownerID int) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	query := `SELECT i.id, i.property_id, i.inquirer_id, i.subject, i.message, i.status, i.room_id, i.created_at, i.updated_at
        FROM inquiries i JOIN properties p ON p.id = i.property_id
        WHERE p.owner_id=$1 ORDER BY i.created_at DESC`
	err := r.db.SelectContext(ctx, &inquiries, query, ownerID)
	return inquiries, err
}
