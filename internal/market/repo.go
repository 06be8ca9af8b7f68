package market

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// Repository exposes quote and alert persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a market repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListQuotes returns every market board row.
func (r *Repository) ListQuotes(ctx context.Context) ([]models.CoffeeQuote, error) {
	var rows []models.CoffeeQuote
	err := r.db.WithContext(ctx).Order("type ASC").Find(&rows).Error
	return rows, err
}

// FindQuoteByType loads the board row for one commodity.
func (r *Repository) FindQuoteByType(ctx context.Context, coffeeType enums.CoffeeType) (*models.CoffeeQuote, error) {
	var quote models.CoffeeQuote
	if err := r.db.WithContext(ctx).First(&quote, "type = ?", coffeeType).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// UpdateQuote rolls the current price into previous, stores the new price and
// pushes it onto both history windows.
func (r *Repository) UpdateQuote(ctx context.Context, coffeeType enums.CoffeeType, price decimal.Decimal) (*models.CoffeeQuote, error) {
	quote, err := r.FindQuoteByType(ctx, coffeeType)
	if err != nil {
		return nil, err
	}

	value, _ := price.Float64()
	quote.PreviousPrice = quote.CurrentPrice
	quote.CurrentPrice = price
	quote.History7d = pushHistory(quote.History7d, value, 7)
	quote.History30d = pushHistory(quote.History30d, value, 30)
	quote.UpdatedAt = time.Now().UTC()

	err = r.db.WithContext(ctx).
		Model(&models.CoffeeQuote{}).
		Where("id = ?", quote.ID).
		Updates(map[string]any{
			"previous_price": quote.PreviousPrice,
			"current_price":  quote.CurrentPrice,
			"history_7d":     quote.History7d,
			"history_30d":    quote.History30d,
			"updated_at":     quote.UpdatedAt,
		}).Error
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func pushHistory(history pq.Float64Array, value float64, cap int) pq.Float64Array {
	history = append(history, value)
	if len(history) > cap {
		history = history[len(history)-cap:]
	}
	return history
}

// CreateAlert inserts a price alert.
func (r *Repository) CreateAlert(ctx context.Context, alert *models.PriceAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// FindAlertByID loads an alert by its UUID.
func (r *Repository) FindAlertByID(ctx context.Context, id uuid.UUID) (*models.PriceAlert, error) {
	var alert models.PriceAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// DeleteAlert removes an alert row.
func (r *Repository) DeleteAlert(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PriceAlert{}, "id = ?", id).Error
}

// ListAlertsByProducer returns a producer's alerts, newest first.
func (r *Repository) ListAlertsByProducer(ctx context.Context, producerID uuid.UUID) ([]models.PriceAlert, error) {
	var rows []models.PriceAlert
	err := r.db.WithContext(ctx).
		Where("producer_id = ?", producerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListUntriggeredAlerts returns every alert still waiting for its crossing.
func (r *Repository) ListUntriggeredAlerts(ctx context.Context) ([]models.PriceAlert, error) {
	var rows []models.PriceAlert
	err := r.db.WithContext(ctx).
		Where("is_triggered = ?", false).
		Find(&rows).Error
	return rows, err
}

// MarkTriggeredTx flips an alert to triggered exactly once. Zero rows
// affected means another evaluator got there first.
func (r *Repository) MarkTriggeredTx(tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := tx.Model(&models.PriceAlert{}).
		Where("id = ? AND is_triggered = ?", id, false).
		Updates(map[string]any{
			"is_triggered": true,
			"triggered_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
