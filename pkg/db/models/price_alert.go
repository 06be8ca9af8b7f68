package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// PriceAlert asks to be told when a commodity quote crosses a target.
// BasePrice snapshots the quote at creation; Direction is derived from the
// target relative to that snapshot and never changes. Triggered flips to
// true exactly once.
type PriceAlert struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProducerID  uuid.UUID            `gorm:"column:producer_id;type:uuid;not null;index"`
	CoffeeType  enums.CoffeeType     `gorm:"column:coffee_type;not null"`
	TargetPrice decimal.Decimal      `gorm:"column:target_price;type:numeric(12,2);not null"`
	BasePrice   decimal.Decimal      `gorm:"column:base_price;type:numeric(12,2);not null"`
	Direction   enums.AlertDirection `gorm:"column:direction;not null"`
	IsTriggered bool                 `gorm:"column:is_triggered;not null;default:false"`
	TriggeredAt *time.Time           `gorm:"column:triggered_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
