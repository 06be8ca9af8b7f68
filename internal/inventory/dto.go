package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// ItemDTO is the transport shape for a stored stock entry.
type ItemDTO struct {
	ID          uuid.UUID           `json:"id"`
	ProducerID  uuid.UUID           `json:"producer_id"`
	Kind        enums.InventoryKind `json:"kind"`
	Bags        int                 `json:"bags"`
	Description string              `json:"description,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CreateItemRequest adds a stock entry to the producer's inventory.
type CreateItemRequest struct {
	Kind        string `json:"kind" validate:"required,oneof='Em Coco' Beneficiado Escolha Robusta"`
	Bags        int    `json:"bags" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=240"`
}

// UpdateItemRequest adjusts the bag count or description of an entry.
type UpdateItemRequest struct {
	Bags        *int    `json:"bags" validate:"omitempty,gte=0"`
	Description *string `json:"description" validate:"omitempty,max=240"`
}

// ValuationDTO is the estimated market value of a producer's whole stock.
type ValuationDTO struct {
	TotalBRL decimal.Decimal `json:"total_brl"`
	Lines    []ValuationLine `json:"lines"`
}

// ValuationLine is the per-entry contribution to the valuation total.
type ValuationLine struct {
	ItemID    uuid.UUID           `json:"item_id"`
	Kind      enums.InventoryKind `json:"kind"`
	Bags      int                 `json:"bags"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
}

// FromModel maps a persisted inventory item into its DTO.
func FromModel(i *models.InventoryItem) *ItemDTO {
	if i == nil {
		return nil
	}
	return &ItemDTO{
		ID:          i.ID,
		ProducerID:  i.ProducerID,
		Kind:        i.Kind,
		Bags:        i.Bags,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// FromModels maps a slice of inventory items, preserving order.
func FromModels(rows []models.InventoryItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
