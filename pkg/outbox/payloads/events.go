package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// LotCreatedEvent signals that a producer published a new lot.
type LotCreatedEvent struct {
	LotID       uuid.UUID        `json:"lot_id"`
	ProducerID  uuid.UUID        `json:"producer_id"`
	CoffeeType  enums.CoffeeType `json:"coffee_type"`
	VolumeBags  int              `json:"volume_bags"`
	IsPublic    bool             `json:"is_public"`
	DesiredBRL  decimal.Decimal  `json:"desired_brl"`
	PublishedAt time.Time        `json:"published_at"`
}

// LotDeletedEvent is emitted when a producer removes an available lot.
type LotDeletedEvent struct {
	LotID      uuid.UUID `json:"lot_id"`
	ProducerID uuid.UUID `json:"producer_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// InterestExpressedEvent records the first interest of a buyer in a lot.
type InterestExpressedEvent struct {
	InterestID uuid.UUID `json:"interest_id"`
	LotID      uuid.UUID `json:"lot_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	ProducerID uuid.UUID `json:"producer_id"`
	SessionID  uuid.UUID `json:"session_id"`
}

// DealClosedEvent surfaces the terminal state of a negotiation.
type DealClosedEvent struct {
	SessionID  uuid.UUID `json:"session_id"`
	LotID      uuid.UUID `json:"lot_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	ProducerID uuid.UUID `json:"producer_id"`
	ClosedByID uuid.UUID `json:"closed_by_id"`
	ClosedAt   time.Time `json:"closed_at"`
}

// AlertTriggeredEvent is emitted once when a price alert crosses its target.
type AlertTriggeredEvent struct {
	AlertID      uuid.UUID            `json:"alert_id"`
	UserID       uuid.UUID            `json:"user_id"`
	CoffeeType   enums.CoffeeType     `json:"coffee_type"`
	Direction    enums.AlertDirection `json:"direction"`
	TargetPrice  decimal.Decimal      `json:"target_price"`
	CurrentPrice decimal.Decimal      `json:"current_price"`
	TriggeredAt  time.Time            `json:"triggered_at"`
}
