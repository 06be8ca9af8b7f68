package models

import (
	"time"

	"github.com/google/uuid"
)

// Interest records a buyer's intent to negotiate for a lot. At most one row
// exists per (lot, buyer) pair; rows are read-only once created and may
// outlive their lot.
type Interest struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LotID     uuid.UUID `gorm:"column:lot_id;type:uuid;not null;uniqueIndex:ux_interests_lot_buyer"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:ux_interests_lot_buyer"`
	BuyerName string    `gorm:"column:buyer_name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
