package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// Service defines the behavior needed by the inventory controller.
type Service interface {
	Create(ctx context.Context, producerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error)
	Update(ctx context.Context, producerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, producerID, itemID uuid.UUID) error
	List(ctx context.Context, producerID uuid.UUID) ([]ItemDTO, error)
	Valuation(ctx context.Context, producerID uuid.UUID) (*ValuationDTO, error)
}

type quoteBoard interface {
	ListQuotes(ctx context.Context) ([]models.CoffeeQuote, error)
}

type service struct {
	repo   *Repository
	quotes quoteBoard
	logg   *logger.Logger
}

// ServiceParams bundles the dependencies required to build an inventory service.
type ServiceParams struct {
	Repo   *Repository
	Quotes quoteBoard
	Logger *logger.Logger
}

// NewService constructs an inventory service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quote board is required")
	}
	return &service{
		repo:   params.Repo,
		quotes: params.Quotes,
		logg:   params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, producerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	kind, err := enums.ParseInventoryKind(req.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory kind")
	}

	item := &models.InventoryItem{
		ID:          uuid.New(),
		ProducerID:  producerID,
		Kind:        kind,
		Bags:        req.Bags,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory item")
	}
	return FromModel(item), nil
}

func (s *service) Update(ctx context.Context, producerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	item, err := s.loadOwned(ctx, producerID, itemID)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if req.Bags != nil {
		if *req.Bags < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bags cannot be negative")
		}
		columns["bags"] = *req.Bags
		item.Bags = *req.Bags
	}
	if req.Description != nil {
		columns["description"] = *req.Description
		item.Description = *req.Description
	}
	if len(columns) == 0 {
		return FromModel(item), nil
	}

	if err := s.repo.Update(ctx, itemID, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory item")
	}
	return FromModel(item), nil
}

func (s *service) Delete(ctx context.Context, producerID, itemID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, producerID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory item")
	}
	return nil
}

func (s *service) List(ctx context.Context, producerID uuid.UUID) ([]ItemDTO, error) {
	rows, err := s.repo.ListByProducer(ctx, producerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	return FromModels(rows), nil
}

// Valuation prices the producer's stock against the market board. Entries
// whose commodity has no board row contribute zero.
func (s *service) Valuation(ctx context.Context, producerID uuid.UUID) (*ValuationDTO, error) {
	items, err := s.repo.ListByProducer(ctx, producerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	quotes, err := s.quotes.ListQuotes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}

	prices := make(map[enums.CoffeeType]decimal.Decimal, len(quotes))
	for _, quote := range quotes {
		prices[quote.Type] = quote.CurrentPrice
	}
	return Estimate(items, prices), nil
}

// Estimate computes the stock valuation for the given items and unit prices.
func Estimate(items []models.InventoryItem, prices map[enums.CoffeeType]decimal.Decimal) *ValuationDTO {
	out := &ValuationDTO{Lines: make([]ValuationLine, 0, len(items))}
	for _, item := range items {
		unit := prices[item.Kind.CoffeeType()]
		subtotal := unit.Mul(decimal.NewFromInt(int64(item.Bags)))
		out.Lines = append(out.Lines, ValuationLine{
			ItemID:    item.ID,
			Kind:      item.Kind,
			Bags:      item.Bags,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
		out.TotalBRL = out.TotalBRL.Add(subtotal)
	}
	return out
}

func (s *service) loadOwned(ctx context.Context, producerID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
	}
	if item.ProducerID != producerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inventory item belongs to another producer")
	}
	return item, nil
}
