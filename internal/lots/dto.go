package lots

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// LotDTO is the transport shape for a production lot.
type LotDTO struct {
	ID           uuid.UUID        `json:"id"`
	ProducerID   uuid.UUID        `json:"producer_id"`
	CoffeeType   enums.CoffeeType `json:"coffee_type"`
	Harvest      string           `json:"harvest"`
	Volume       int              `json:"volume"`
	Quality      string           `json:"quality"`
	DesiredPrice decimal.Decimal  `json:"desired_price"`
	Location     string           `json:"location"`
	IsPublic     bool             `json:"is_public"`
	Status       enums.LotStatus  `json:"status"`
	IsFeatured   bool             `json:"is_featured"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CreateLotRequest carries the payload for publishing a new lot.
type CreateLotRequest struct {
	CoffeeType   string          `json:"coffee_type" validate:"required,oneof=Arábica Robusta"`
	Harvest      string          `json:"harvest" validate:"required,max=32"`
	Volume       int             `json:"volume" validate:"required,gt=0"`
	Quality      string          `json:"quality" validate:"required,max=128"`
	DesiredPrice decimal.Decimal `json:"desired_price" validate:"required"`
	Location     string          `json:"location" validate:"required,max=160"`
	IsPublic     *bool           `json:"is_public"`
}

// SetFeaturedRequest toggles the featured flag on a lot.
type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}

// TransitionRequest moves a lot forward in its sale lifecycle. Only reserved
// is accepted; sold happens when a negotiation closes.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=reserved"`
}

// Page is one cursor-paginated slice of lots.
type Page struct {
	Items      []LotDTO `json:"items"`
	NextCursor string   `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// FromModel maps a persisted lot into its DTO.
func FromModel(l *models.Lot) *LotDTO {
	if l == nil {
		return nil
	}

	return &LotDTO{
		ID:           l.ID,
		ProducerID:   l.ProducerID,
		CoffeeType:   l.CoffeeType,
		Harvest:      l.Harvest,
		Volume:       l.Volume,
		Quality:      l.Quality,
		DesiredPrice: l.DesiredPrice,
		Location:     l.Location,
		IsPublic:     l.IsPublic,
		Status:       l.Status,
		IsFeatured:   l.IsFeatured,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// FromModels maps a slice of lots, preserving order.
func FromModels(rows []models.Lot) []LotDTO {
	out := make([]LotDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
