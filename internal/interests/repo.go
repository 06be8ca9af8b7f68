package interests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
)

// Repository exposes interest persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an interests repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts an interest inside an existing transaction. The unique
// index on (lot_id, buyer_id) rejects a second row for the same pair.
func (r *Repository) CreateTx(tx *gorm.DB, interest *models.Interest) error {
	return tx.Create(interest).Error
}

// FindByPairTx loads the interest for a (lot, buyer) pair inside a transaction.
func (r *Repository) FindByPairTx(tx *gorm.DB, lotID, buyerID uuid.UUID) (*models.Interest, error) {
	var interest models.Interest
	if err := tx.First(&interest, "lot_id = ? AND buyer_id = ?", lotID, buyerID).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

// ListByLot returns every interest registered for a lot, oldest first.
func (r *Repository) ListByLot(ctx context.Context, lotID uuid.UUID) ([]models.Interest, error) {
	var rows []models.Interest
	err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListByBuyer returns every interest a buyer has expressed, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.Interest, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Interest
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
