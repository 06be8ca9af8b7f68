package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
)

const inventorySchema = `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  producer_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  bags INTEGER NOT NULL DEFAULT 0,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

type stubQuoteBoard struct {
	quotes []models.CoffeeQuote
	err    error
}

func (s stubQuoteBoard) ListQuotes(context.Context) ([]models.CoffeeQuote, error) {
	return s.quotes, s.err
}

func newInventoryService(t *testing.T, board quoteBoard) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(inventorySchema).Error)
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		_ = sqlDB.Close()
	})

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Quotes: board})
	require.NoError(t, err)
	return svc, conn
}

func marketBoard() stubQuoteBoard {
	return stubQuoteBoard{quotes: []models.CoffeeQuote{
		{Type: enums.CoffeeTypeArabica, CurrentPrice: decimal.NewFromInt(1000)},
		{Type: enums.CoffeeTypeRobusta, CurrentPrice: decimal.NewFromInt(700)},
	}}
}

func TestInventoryCRUDIsOwnerScoped(t *testing.T) {
	svc, _ := newInventoryService(t, marketBoard())
	producerID := uuid.New()

	item, err := svc.Create(context.Background(), producerID, CreateItemRequest{
		Kind: "Beneficiado",
		Bags: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.InventoryKindBeneficiado, item.Kind)

	bags := 55
	updated, err := svc.Update(context.Background(), producerID, item.ID, UpdateItemRequest{Bags: &bags})
	require.NoError(t, err)
	assert.Equal(t, 55, updated.Bags)

	_, err = svc.Update(context.Background(), uuid.New(), item.ID, UpdateItemRequest{Bags: &bags})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	err = svc.Delete(context.Background(), uuid.New(), item.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	require.NoError(t, svc.Delete(context.Background(), producerID, item.ID))

	rest, err := svc.List(context.Background(), producerID)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	svc, _ := newInventoryService(t, marketBoard())

	_, err := svc.Create(context.Background(), uuid.New(), CreateItemRequest{Kind: "Verde", Bags: 10})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestValuationPricesKindsAgainstBoard(t *testing.T) {
	svc, _ := newInventoryService(t, marketBoard())
	producerID := uuid.New()

	// 3 arabica-priced entries and one robusta-priced entry.
	for _, seed := range []struct {
		kind string
		bags int
	}{
		{"Em Coco", 2},
		{"Beneficiado", 1},
		{"Escolha", 1},
		{"Robusta", 2},
	} {
		_, err := svc.Create(context.Background(), producerID, CreateItemRequest{Kind: seed.kind, Bags: seed.bags})
		require.NoError(t, err)
	}

	valuation, err := svc.Valuation(context.Background(), producerID)
	require.NoError(t, err)

	// 4*1000 + 2*700
	assert.Equal(t, "5400", valuation.TotalBRL.String())
	require.Len(t, valuation.Lines, 4)

	byKind := map[enums.InventoryKind]ValuationLine{}
	for _, line := range valuation.Lines {
		byKind[line.Kind] = line
	}
	assert.Equal(t, "2000", byKind[enums.InventoryKindCoco].Subtotal.String())
	assert.Equal(t, "1400", byKind[enums.InventoryKindRobusta].Subtotal.String())
}

func TestValuationMissingQuoteContributesZero(t *testing.T) {
	board := stubQuoteBoard{quotes: []models.CoffeeQuote{
		{Type: enums.CoffeeTypeArabica, CurrentPrice: decimal.NewFromInt(1000)},
	}}
	svc, _ := newInventoryService(t, board)
	producerID := uuid.New()

	_, err := svc.Create(context.Background(), producerID, CreateItemRequest{Kind: "Robusta", Bags: 10})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), producerID, CreateItemRequest{Kind: "Escolha", Bags: 1})
	require.NoError(t, err)

	valuation, err := svc.Valuation(context.Background(), producerID)
	require.NoError(t, err)
	assert.Equal(t, "1000", valuation.TotalBRL.String())
}

func TestEstimateEmptyInventory(t *testing.T) {
	got := Estimate(nil, nil)
	assert.True(t, got.TotalBRL.IsZero())
	assert.Empty(t, got.Lines)
}
