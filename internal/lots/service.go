package lots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox/payloads"
	"github.com/cafeconecta/cafeconecta-backend/pkg/pagination"
)

// Service defines the behavior needed by the lots controller.
type Service interface {
	Create(ctx context.Context, producerID uuid.UUID, plan enums.SubscriptionPlan, req CreateLotRequest) (*LotDTO, error)
	Delete(ctx context.Context, producerID, lotID uuid.UUID) error
	SetFeatured(ctx context.Context, lotID uuid.UUID, featured bool) (*LotDTO, error)
	Transition(ctx context.Context, producerID, lotID uuid.UUID, next enums.LotStatus) (*LotDTO, error)
	Get(ctx context.Context, viewerID, lotID uuid.UUID) (*LotDTO, error)
	ListPublic(ctx context.Context, params pagination.Params) (*Page, error)
	ListByProducer(ctx context.Context, producerID uuid.UUID, limit int) ([]LotDTO, error)
}

type service struct {
	db     *db.Client
	repo   *Repository
	outbox *outbox.Service
	logg   *logger.Logger
}

// ServiceParams bundles the dependencies required to build a lots service.
type ServiceParams struct {
	DB     *db.Client
	Repo   *Repository
	Outbox *outbox.Service
	Logger *logger.Logger
}

// NewService constructs a lots service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("lots repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, producerID uuid.UUID, plan enums.SubscriptionPlan, req CreateLotRequest) (*LotDTO, error) {
	coffeeType, err := enums.ParseCoffeeType(req.CoffeeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coffee type")
	}
	if req.DesiredPrice.IsNegative() || req.DesiredPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "desired price must be positive")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	lot := &models.Lot{
		ID:           uuid.New(),
		ProducerID:   producerID,
		CoffeeType:   coffeeType,
		Harvest:      req.Harvest,
		Volume:       req.Volume,
		Quality:      req.Quality,
		DesiredPrice: req.DesiredPrice,
		Location:     req.Location,
		IsPublic:     isPublic,
		Status:       enums.LotStatusAvailable,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		active, err := s.repo.CountActiveTx(tx, producerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active lots")
		}
		if max := plan.MaxActiveLots(); max >= 0 && active >= int64(max) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "active lot limit reached for current plan").
				WithDetails(map[string]any{"plan": plan, "max_active_lots": max})
		}
		if err := s.repo.CreateTx(tx, lot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create lot")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLotCreated,
			AggregateType: enums.AggregateLot,
			AggregateID:   lot.ID,
			Actor:         &outbox.ActorRef{UserID: producerID, Role: string(enums.UserRoleProducer)},
			Data: payloads.LotCreatedEvent{
				LotID:       lot.ID,
				ProducerID:  producerID,
				CoffeeType:  coffeeType,
				VolumeBags:  lot.Volume,
				IsPublic:    lot.IsPublic,
				DesiredBRL:  lot.DesiredPrice,
				PublishedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithLotID(ctx, lot.ID.String()), "lot published")
	}
	return FromModel(lot), nil
}

func (s *service) Delete(ctx context.Context, producerID, lotID uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		lot, err := s.repo.FindByIDTx(tx, lotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lot")
		}
		if lot.ProducerID != producerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "lot belongs to another producer")
		}
		if lot.Status != enums.LotStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only available lots can be deleted")
		}
		if err := s.repo.DeleteTx(tx, lotID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete lot")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLotDeleted,
			AggregateType: enums.AggregateLot,
			AggregateID:   lotID,
			Actor:         &outbox.ActorRef{UserID: producerID, Role: string(enums.UserRoleProducer)},
			Data: payloads.LotDeletedEvent{
				LotID:      lotID,
				ProducerID: producerID,
				DeletedAt:  time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithLotID(ctx, lotID.String()), "lot deleted")
	}
	return nil
}

// SetFeatured toggles the marketplace highlight flag. Reserved for admins at
// the route layer, so ownership is not checked here.
func (s *service) SetFeatured(ctx context.Context, lotID uuid.UUID, featured bool) (*LotDTO, error) {
	lot, err := s.repo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lot")
	}
	if lot.IsFeatured == featured {
		return FromModel(lot), nil
	}
	if err := s.repo.SetFeatured(ctx, lotID, featured); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update featured flag")
	}
	lot.IsFeatured = featured
	return FromModel(lot), nil
}

// Transition moves one of the producer's lots to reserved. Sold is never set
// here: a lot only sells inside the deal close transaction, together with the
// session that closed it.
func (s *service) Transition(ctx context.Context, producerID, lotID uuid.UUID, next enums.LotStatus) (*LotDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lot status")
	}
	if next != enums.LotStatusReserved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lots can only be moved to reserved; sold is set when a deal closes")
	}

	var out *models.Lot
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		lot, err := s.repo.FindByIDTx(tx, lotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lot")
		}
		if lot.ProducerID != producerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "lot belongs to another producer")
		}
		if !lot.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move lot from %s to %s", lot.Status, next))
		}
		moved, err := s.repo.UpdateStatusTx(tx, lotID, lot.Status, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update lot status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "lot status changed concurrently")
		}
		lot.Status = next
		out = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) Get(ctx context.Context, viewerID, lotID uuid.UUID) (*LotDTO, error) {
	lot, err := s.repo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lot")
	}
	if !lot.IsPublic && lot.ProducerID != viewerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
	}
	return FromModel(lot), nil
}

func (s *service) ListPublic(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListPublic(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list public lots")
	}

	rows, hasMore := pagination.TrimPage(rows, params.Limit)
	page := &Page{Items: FromModels(rows), HasMore: hasMore}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			Featured:  last.IsFeatured,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) ListByProducer(ctx context.Context, producerID uuid.UUID, limit int) ([]LotDTO, error) {
	rows, err := s.repo.ListByProducer(ctx, producerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list producer lots")
	}
	return FromModels(rows), nil
}
