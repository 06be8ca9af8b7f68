package negotiations

import (
	"time"

	"github.com/google/uuid"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// SessionDTO is the transport shape for a negotiation thread.
type SessionDTO struct {
	ID           uuid.UUID               `json:"id"`
	LotID        uuid.UUID               `json:"lot_id"`
	BuyerID      uuid.UUID               `json:"buyer_id"`
	ProducerID   uuid.UUID               `json:"producer_id"`
	Status       enums.NegotiationStatus `json:"status"`
	MessageCount int                     `json:"message_count"`
	LastUpdate   time.Time               `json:"last_update"`
	CreatedAt    time.Time               `json:"created_at"`
}

// MessageDTO is one entry of a session's append-only message log.
type MessageDTO struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Seq       int       `json:"seq"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	IsAuto    bool      `json:"is_auto"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest carries the payload for appending a chat message.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// FromSessionModel maps a persisted negotiation into its DTO.
func FromSessionModel(n *models.Negotiation) *SessionDTO {
	if n == nil {
		return nil
	}
	return &SessionDTO{
		ID:           n.ID,
		LotID:        n.LotID,
		BuyerID:      n.BuyerID,
		ProducerID:   n.ProducerID,
		Status:       n.Status,
		MessageCount: n.MessageCount,
		LastUpdate:   n.LastUpdate,
		CreatedAt:    n.CreatedAt,
	}
}

// FromSessionModels maps a slice of negotiations, preserving order.
func FromSessionModels(rows []models.Negotiation) []SessionDTO {
	out := make([]SessionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromSessionModel(&rows[i]))
	}
	return out
}

// FromMessageModel maps a persisted chat message into its DTO.
func FromMessageModel(m *models.ChatMessage) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:        m.ID,
		SessionID: m.SessionID,
		Seq:       m.Seq,
		SenderID:  m.SenderID,
		Text:      m.Text,
		IsAuto:    m.IsAuto,
		CreatedAt: m.CreatedAt,
	}
}

// FromMessageModels maps a slice of messages, preserving order.
func FromMessageModels(rows []models.ChatMessage) []MessageDTO {
	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromMessageModel(&rows[i]))
	}
	return out
}
