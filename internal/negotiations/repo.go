package negotiations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
)

// ErrSessionClosed signals an append or close attempt on a closed session.
var ErrSessionClosed = errors.New("negotiation session is closed")

// Repository exposes negotiation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a negotiations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsureTx returns the session for a (lot, buyer) pair, creating it when it
// does not exist yet. The second return reports whether a row was created.
// Concurrent first calls are resolved by the unique index on the pair.
func (r *Repository) EnsureTx(tx *gorm.DB, lotID, buyerID, producerID uuid.UUID) (*models.Negotiation, bool, error) {
	var existing models.Negotiation
	err := tx.First(&existing, "lot_id = ? AND buyer_id = ?", lotID, buyerID).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	session := models.Negotiation{
		ID:         uuid.New(),
		LotID:      lotID,
		BuyerID:    buyerID,
		ProducerID: producerID,
		Status:     enums.NegotiationStatusOpen,
		LastUpdate: time.Now().UTC(),
	}
	if err := tx.Create(&session).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_negotiations_lot_buyer") {
			if err := tx.First(&existing, "lot_id = ? AND buyer_id = ?", lotID, buyerID).Error; err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &session, true, nil
}

// FindByID loads a session by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Negotiation, error) {
	var session models.Negotiation
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByIDTx loads a session inside an existing transaction.
func (r *Repository) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Negotiation, error) {
	var session models.Negotiation
	if err := tx.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListForUser returns every session where the user is a party, most recently
// active first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Negotiation, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Negotiation
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR producer_id = ?", userID, userID).
		Order("last_update DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// AppendMessageTx assigns the next sequence number and inserts one message.
// The counter bump carries the open-session predicate, so a closed session
// can never grow its log; that case returns ErrSessionClosed.
func (r *Repository) AppendMessageTx(tx *gorm.DB, sessionID, senderID uuid.UUID, text string, isAuto bool) (*models.ChatMessage, error) {
	res := tx.Model(&models.Negotiation{}).
		Where("id = ? AND status <> ?", sessionID, enums.NegotiationStatusClosed).
		Updates(map[string]any{
			"message_count": gorm.Expr("message_count + 1"),
			"last_update":   time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrSessionClosed
	}

	var seq int
	err := tx.Model(&models.Negotiation{}).
		Select("message_count").
		Where("id = ?", sessionID).
		Scan(&seq).Error
	if err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Seq:       seq,
		SenderID:  senderID,
		Text:      text,
		IsAuto:    isAuto,
	}
	if err := tx.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkNegotiatingTx moves an open session into the negotiating state. Calls
// on sessions past that state are no-ops.
func (r *Repository) MarkNegotiatingTx(tx *gorm.DB, sessionID uuid.UUID) error {
	return tx.Model(&models.Negotiation{}).
		Where("id = ? AND status = ?", sessionID, enums.NegotiationStatusOpen).
		UpdateColumn("status", enums.NegotiationStatusNegotiating).Error
}

// CloseTx moves a session into the terminal closed state. Closing an already
// closed session returns ErrSessionClosed.
func (r *Repository) CloseTx(tx *gorm.DB, sessionID uuid.UUID) error {
	res := tx.Model(&models.Negotiation{}).
		Where("id = ? AND status <> ?", sessionID, enums.NegotiationStatusClosed).
		Updates(map[string]any{
			"status":      enums.NegotiationStatusClosed,
			"last_update": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionClosed
	}
	return nil
}

// ListMessages returns a session's log in sequence order.
func (r *Repository) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.ChatMessage
	err := query.Find(&rows).Error
	return rows, err
}

// LastMessages returns the tail of a session's log in sequence order.
func (r *Repository) LastMessages(ctx context.Context, sessionID uuid.UUID, window int) ([]models.ChatMessage, error) {
	if window <= 0 {
		window = 5
	}
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq DESC").
		Limit(window).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, err
}
