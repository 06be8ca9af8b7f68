package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// User is a marketplace account: producer, buyer, or admin.
type User struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                 `gorm:"column:name;not null"`
	Email        string                 `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	PasswordHash string                 `gorm:"column:password_hash;not null"`
	Role         enums.UserRole         `gorm:"column:role;not null"`
	Plan         enums.SubscriptionPlan `gorm:"column:plan;not null;default:free"`
	IsBlocked    bool                   `gorm:"column:is_blocked;not null;default:false"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
