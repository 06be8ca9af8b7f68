package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// Tip is a technical article shown to producers.
type Tip struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Category  enums.TipCategory `gorm:"column:category;not null"`
	Title     string            `gorm:"column:title;not null"`
	Content   string            `gorm:"column:content;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
