package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// InventoryItem is a producer's stored stock, counted in standard bags.
type InventoryItem struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProducerID  uuid.UUID           `gorm:"column:producer_id;type:uuid;not null;index"`
	Kind        enums.InventoryKind `gorm:"column:kind;not null"`
	Bags        int                 `gorm:"column:bags;not null;default:0"`
	Description string              `gorm:"column:description"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
