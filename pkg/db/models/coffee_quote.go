package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// CoffeeQuote is the market board row for one commodity. The quote feed owns
// these values; the rest of the system only reads them.
type CoffeeQuote struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type          enums.CoffeeType `gorm:"column:type;not null;uniqueIndex:ux_coffee_quotes_type"`
	CurrentPrice  decimal.Decimal  `gorm:"column:current_price;type:numeric(12,2);not null"`
	PreviousPrice decimal.Decimal  `gorm:"column:previous_price;type:numeric(12,2);not null"`
	History7d     pq.Float64Array  `gorm:"column:history_7d;type:numeric(12,2)[]"`
	History30d    pq.Float64Array  `gorm:"column:history_30d;type:numeric(12,2)[]"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
