package interests

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox/payloads"
)

// Service defines the behavior needed by the interests controller.
type Service interface {
	Express(ctx context.Context, buyerID, lotID uuid.UUID) (*InterestDTO, error)
	ListByLot(ctx context.Context, producerID, lotID uuid.UUID) ([]InterestDTO, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]InterestDTO, error)
}

type lotFinder interface {
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Lot, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lot, error)
}

type sessionLedger interface {
	EnsureTx(tx *gorm.DB, lotID, buyerID, producerID uuid.UUID) (*models.Negotiation, bool, error)
}

type buyerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	db       *db.Client
	repo     *Repository
	lots     lotFinder
	sessions sessionLedger
	buyers   buyerDirectory
	outbox   *outbox.Service
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build an interests service.
type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Lots     lotFinder
	Sessions sessionLedger
	Buyers   buyerDirectory
	Outbox   *outbox.Service
	Logger   *logger.Logger
}

// NewService constructs an interests service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("interests repository is required")
	}
	if params.Lots == nil {
		return nil, fmt.Errorf("lot finder is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session ledger is required")
	}
	if params.Buyers == nil {
		return nil, fmt.Errorf("buyer directory is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		lots:     params.Lots,
		sessions: params.Sessions,
		buyers:   params.Buyers,
		outbox:   params.Outbox,
		logg:     params.Logger,
	}, nil
}

// Express registers a buyer's interest in a lot and opens the negotiation
// thread for the pair. Calling it again for the same pair returns the
// existing interest without emitting another event.
func (s *service) Express(ctx context.Context, buyerID, lotID uuid.UUID) (*InterestDTO, error) {
	buyer, err := s.buyers.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown buyer")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
	}

	var interest *models.Interest
	var sessionID uuid.UUID
	var created bool

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		lot, err := s.lots.FindByIDTx(tx, lotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lot")
		}
		if lot.ProducerID == buyerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot express interest in your own lot")
		}
		if lot.Status != enums.LotStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "lot is no longer available")
		}
		if !lot.IsPublic {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "lot is not public")
		}

		candidate := &models.Interest{
			ID:        uuid.New(),
			LotID:     lotID,
			BuyerID:   buyerID,
			BuyerName: buyer.Name,
		}
		if err := s.repo.CreateTx(tx, candidate); err != nil {
			if !db.IsUniqueViolation(err, "ux_interests_lot_buyer") {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create interest")
			}
			existing, err := s.repo.FindByPairTx(tx, lotID, buyerID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load existing interest")
			}
			interest = existing
		} else {
			interest = candidate
			created = true
		}

		session, _, err := s.sessions.EnsureTx(tx, lotID, buyerID, lot.ProducerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure negotiation session")
		}
		sessionID = session.ID

		if !created {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInterestExpressed,
			AggregateType: enums.AggregateInterest,
			AggregateID:   interest.ID,
			Actor:         &outbox.ActorRef{UserID: buyerID, Role: string(enums.UserRoleBuyer)},
			Data: payloads.InterestExpressedEvent{
				InterestID: interest.ID,
				LotID:      lotID,
				BuyerID:    buyerID,
				ProducerID: lot.ProducerID,
				SessionID:  sessionID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if created && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"lot_id":     lotID.String(),
			"session_id": sessionID.String(),
		})
		s.logg.Info(logCtx, "interest expressed")
	}
	return FromModel(interest, sessionID), nil
}

// ListByLot returns the interests for one of the producer's lots.
func (s *service) ListByLot(ctx context.Context, producerID, lotID uuid.UUID) ([]InterestDTO, error) {
	lot, err := s.lots.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lot")
	}
	if lot.ProducerID != producerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "lot belongs to another producer")
	}

	rows, err := s.repo.ListByLot(ctx, lotID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list interests")
	}
	return s.toDTOs(rows), nil
}

// ListByBuyer returns the interests the buyer has expressed.
func (s *service) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int) ([]InterestDTO, error) {
	rows, err := s.repo.ListByBuyer(ctx, buyerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list interests")
	}
	return s.toDTOs(rows), nil
}

func (s *service) toDTOs(rows []models.Interest) []InterestDTO {
	out := make([]InterestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], uuid.Nil))
	}
	return out
}
