package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// Lot is a producer's batch of coffee offered for sale. Status only moves
// forward (available -> reserved -> sold); a sold lot is immutable except
// for the featured flag and is never deleted.
type Lot struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProducerID   uuid.UUID        `gorm:"column:producer_id;type:uuid;not null;index"`
	CoffeeType   enums.CoffeeType `gorm:"column:coffee_type;not null"`
	Harvest      string           `gorm:"column:harvest;not null"`
	Volume       int              `gorm:"column:volume;not null"`
	Quality      string           `gorm:"column:quality;not null"`
	DesiredPrice decimal.Decimal  `gorm:"column:desired_price;type:numeric(12,2);not null"`
	Location     string           `gorm:"column:location;not null"`
	IsPublic     bool             `gorm:"column:is_public;not null;default:true"`
	Status       enums.LotStatus  `gorm:"column:status;not null;default:available"`
	IsFeatured   bool             `gorm:"column:is_featured;not null;default:false"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
