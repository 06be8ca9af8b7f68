package lots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	"github.com/cafeconecta/cafeconecta-backend/pkg/pagination"
)

// Repository exposes lot persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a lots repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a lot inside an existing transaction.
func (r *Repository) CreateTx(tx *gorm.DB, lot *models.Lot) error {
	return tx.Create(lot).Error
}

// FindByID loads a lot by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Lot, error) {
	var lot models.Lot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// FindByIDTx loads a lot inside an existing transaction.
func (r *Repository) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Lot, error) {
	var lot models.Lot
	if err := tx.First(&lot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// CountActiveTx counts a producer's lots that still occupy a plan slot.
// Sold lots are history and no longer count against the plan.
func (r *Repository) CountActiveTx(tx *gorm.DB, producerID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.Lot{}).
		Where("producer_id = ? AND status <> ?", producerID, enums.LotStatusSold).
		Count(&count).Error
	return count, err
}

// DeleteTx removes a lot row inside a transaction.
func (r *Repository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&models.Lot{}, "id = ?", id).Error
}

// UpdateStatusTx moves a lot from one status to another. The previous status
// is part of the predicate so concurrent transitions cannot race past each
// other; zero rows affected means the lot was no longer in the from status.
func (r *Repository) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to enums.LotStatus) (bool, error) {
	res := tx.Model(&models.Lot{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkSoldTx moves a lot to sold regardless of its current pre-sale status.
// Zero rows affected means the lot is gone or was already sold.
func (r *Repository) MarkSoldTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&models.Lot{}).
		Where("id = ? AND status <> ?", id, enums.LotStatusSold).
		UpdateColumn("status", enums.LotStatusSold)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetFeatured toggles the featured flag.
func (r *Repository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Where("id = ?", id).
		UpdateColumn("is_featured", featured).Error
}

// ListPublic returns the buyer marketplace feed: available public lots,
// featured first, newest first within each group. The caller passes a
// buffered limit so it can detect the next page.
func (r *Repository) ListPublic(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Lot, error) {
	query := r.db.WithContext(ctx).
		Where("is_public = ? AND status = ?", true, enums.LotStatusAvailable).
		Order("is_featured DESC, created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		// Rows after the cursor: older rows in the same featured group, or
		// the unfeatured group entirely when the cursor was featured.
		query = query.Where(
			"(is_featured = ? AND (created_at < ? OR (created_at = ? AND id < ?))) OR (? AND is_featured = ?)",
			cursor.Featured, cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			cursor.Featured, false,
		)
	}

	var rows []models.Lot
	err := query.Find(&rows).Error
	return rows, err
}

// ListByProducer returns every lot owned by the producer, newest first.
func (r *Repository) ListByProducer(ctx context.Context, producerID uuid.UUID, limit int) ([]models.Lot, error) {
	if limit <= 0 {
		limit = pagination.MaxLimit
	}
	var rows []models.Lot
	err := r.db.WithContext(ctx).
		Where("producer_id = ?", producerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
