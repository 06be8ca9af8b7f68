package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one immutable entry in a negotiation's append-only log.
// Seq is assigned under the session row lock, so (session_id, seq) reflects
// completion order of send and auto-reply tasks.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID uuid.UUID `gorm:"column:session_id;type:uuid;not null;uniqueIndex:ux_chat_messages_session_seq"`
	Seq       int       `gorm:"column:seq;not null;uniqueIndex:ux_chat_messages_session_seq"`
	SenderID  uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	Text      string    `gorm:"column:text;not null"`
	IsAuto    bool      `gorm:"column:is_auto;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
