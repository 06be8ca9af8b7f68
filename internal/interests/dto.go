package interests

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
)

// InterestDTO is the transport shape for a buyer's interest in a lot. The
// session is the negotiation thread opened alongside the interest.
type InterestDTO struct {
	ID        uuid.UUID `json:"id"`
	LotID     uuid.UUID `json:"lot_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	BuyerName string    `json:"buyer_name"`
	SessionID uuid.UUID `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModel maps a persisted interest into its DTO.
func FromModel(i *models.Interest, sessionID uuid.UUID) *InterestDTO {
	if i == nil {
		return nil
	}
	return &InterestDTO{
		ID:        i.ID,
		LotID:     i.LotID,
		BuyerID:   i.BuyerID,
		BuyerName: i.BuyerName,
		SessionID: sessionID,
		CreatedAt: i.CreatedAt,
	}
}
