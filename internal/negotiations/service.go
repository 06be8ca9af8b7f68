package negotiations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/gemini"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox/payloads"
)

const (
	buyerDisplayName    = "Comprador"
	producerDisplayName = "Produtor"
)

// Service defines the behavior needed by the negotiations controller.
type Service interface {
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]SessionDTO, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*SessionDTO, error)
	ListMessages(ctx context.Context, userID, sessionID uuid.UUID) ([]MessageDTO, error)
	SendMessage(ctx context.Context, senderID, sessionID uuid.UUID, req SendMessageRequest) (*MessageDTO, error)
	CloseDeal(ctx context.Context, actorID, sessionID uuid.UUID) (*SessionDTO, error)
}

type lotLedger interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lot, error)
	MarkSoldTx(tx *gorm.DB, id uuid.UUID) (bool, error)
}

type service struct {
	db        *db.Client
	repo      *Repository
	lots      lotLedger
	outbox    *outbox.Service
	replier   ReplyGenerator
	scheduler *Scheduler
	chatCfg   config.ChatConfig
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a negotiations
// service. Replier and Scheduler are optional; without them messages are
// stored but no simulated counterparty answers.
type ServiceParams struct {
	DB         *db.Client
	Repo       *Repository
	Lots       lotLedger
	Outbox     *outbox.Service
	Replier    ReplyGenerator
	Scheduler  *Scheduler
	ChatConfig config.ChatConfig
	Logger     *logger.Logger
}

// NewService constructs a negotiations service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("negotiations repository is required")
	}
	if params.Lots == nil {
		return nil, fmt.Errorf("lot ledger is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:        params.DB,
		repo:      params.Repo,
		lots:      params.Lots,
		outbox:    params.Outbox,
		replier:   params.Replier,
		scheduler: params.Scheduler,
		chatCfg:   params.ChatConfig,
		logg:      params.Logger,
	}, nil
}

func (s *service) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]SessionDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sessions")
	}
	return FromSessionModels(rows), nil
}

func (s *service) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*SessionDTO, error) {
	session, err := s.loadParty(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return FromSessionModel(session), nil
}

func (s *service) ListMessages(ctx context.Context, userID, sessionID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.loadParty(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMessages(ctx, sessionID, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}
	return FromMessageModels(rows), nil
}

func (s *service) SendMessage(ctx context.Context, senderID, sessionID uuid.UUID, req SendMessageRequest) (*MessageDTO, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text must not be empty")
	}

	session, err := s.loadParty(ctx, senderID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == enums.NegotiationStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation is closed")
	}

	var message *models.ChatMessage
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		message, err = s.repo.AppendMessageTx(tx, sessionID, senderID, req.Text, false)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation is closed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append message")
		}
		if err := s.repo.MarkNegotiatingTx(tx, sessionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advance session status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduleAutoReply(session, senderID)
	return FromMessageModel(message), nil
}

func (s *service) CloseDeal(ctx context.Context, actorID, sessionID uuid.UUID) (*SessionDTO, error) {
	var closed *models.Negotiation
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		session, err := s.repo.FindByIDTx(tx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "negotiation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
		}
		if !session.IsParty(actorID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this negotiation")
		}
		if err := s.repo.CloseTx(tx, sessionID); err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation is already closed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close session")
		}
		sold, err := s.lots.MarkSoldTx(tx, session.LotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark lot sold")
		}
		if !sold {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "lot was already sold")
		}

		now := time.Now().UTC()
		session.Status = enums.NegotiationStatusClosed
		session.LastUpdate = now
		closed = session

		role := enums.UserRoleBuyer
		if actorID == session.ProducerID {
			role = enums.UserRoleProducer
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDealClosed,
			AggregateType: enums.AggregateNegotiation,
			AggregateID:   sessionID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: string(role)},
			Data: payloads.DealClosedEvent{
				SessionID:  sessionID,
				LotID:      session.LotID,
				BuyerID:    session.BuyerID,
				ProducerID: session.ProducerID,
				ClosedByID: actorID,
				ClosedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		s.scheduler.Cancel(sessionID)
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithSessionID(ctx, sessionID.String()), "deal closed")
	}
	return FromSessionModel(closed), nil
}

func (s *service) scheduleAutoReply(session *models.Negotiation, senderID uuid.UUID) {
	if s.scheduler == nil || s.replier == nil {
		return
	}
	counterpartyID := session.Counterparty(senderID)
	sessionID := session.ID
	s.scheduler.Schedule(sessionID, func(ctx context.Context) {
		s.deliverAutoReply(ctx, sessionID, counterpartyID)
	})
}

// deliverAutoReply runs on the scheduler goroutine after the configured
// delay. The session is re-read so replies land only on still-open sessions.
func (s *service) deliverAutoReply(ctx context.Context, sessionID, counterpartyID uuid.UUID) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil || session.Status == enums.NegotiationStatusClosed {
		return
	}

	persona := enums.UserRoleProducer
	if counterpartyID == session.BuyerID {
		persona = enums.UserRoleBuyer
	}

	history, err := s.repo.LastMessages(ctx, sessionID, s.chatCfg.HistoryWindow)
	if err != nil {
		history = nil
	}
	entries := make([]gemini.HistoryEntry, 0, len(history))
	for _, msg := range history {
		name := producerDisplayName
		if msg.SenderID == session.BuyerID {
			name = buyerDisplayName
		}
		entries = append(entries, gemini.HistoryEntry{SenderName: name, Text: msg.Text})
	}

	text := s.replier.Reply(ctx, ReplyPrompt{
		Persona:    persona,
		LotSummary: s.lotSummary(ctx, session.LotID),
		History:    entries,
	})

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.AppendMessageTx(tx, sessionID, counterpartyID, text, true)
		return err
	})
	if err != nil && !errors.Is(err, ErrSessionClosed) && s.logg != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID.String()), "auto reply append failed", err)
	}
}

func (s *service) lotSummary(ctx context.Context, lotID uuid.UUID) string {
	lot, err := s.lots.FindByID(ctx, lotID)
	if err != nil {
		return "Lote removido do marketplace."
	}
	return fmt.Sprintf("%s, safra %s, %d sacas, %s, R$ %s/saca em %s",
		lot.CoffeeType, lot.Harvest, lot.Volume, lot.Quality, lot.DesiredPrice.StringFixed(2), lot.Location)
}

func (s *service) loadParty(ctx context.Context, userID, sessionID uuid.UUID) (*models.Negotiation, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "negotiation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	if !session.IsParty(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this negotiation")
	}
	return session, nil
}
