package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// Negotiation is the message thread between one buyer and one producer about
// one lot. Exactly one session exists per (lot, buyer) pair; closed is
// terminal and the thread is retained as history.
type Negotiation struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LotID        uuid.UUID               `gorm:"column:lot_id;type:uuid;not null;uniqueIndex:ux_negotiations_lot_buyer"`
	BuyerID      uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:ux_negotiations_lot_buyer"`
	ProducerID   uuid.UUID               `gorm:"column:producer_id;type:uuid;not null;index"`
	Status       enums.NegotiationStatus `gorm:"column:status;not null;default:open"`
	MessageCount int                     `gorm:"column:message_count;not null;default:0"`
	Messages     []ChatMessage           `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	LastUpdate   time.Time               `gorm:"column:last_update;not null"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// IsParty reports whether the given user is one of the session's two sides.
func (n Negotiation) IsParty(userID uuid.UUID) bool {
	return userID == n.BuyerID || userID == n.ProducerID
}

// Counterparty returns the other side of the session relative to userID.
func (n Negotiation) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == n.BuyerID {
		return n.ProducerID
	}
	return n.BuyerID
}
