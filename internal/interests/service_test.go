package interests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/internal/lots"
	"github.com/cafeconecta/cafeconecta-backend/internal/negotiations"
	"github.com/cafeconecta/cafeconecta-backend/internal/users"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
)

const interestsSchema = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  plan TEXT NOT NULL DEFAULT 'free',
  is_blocked INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS lots (
  id TEXT PRIMARY KEY,
  producer_id TEXT NOT NULL,
  coffee_type TEXT NOT NULL,
  harvest TEXT NOT NULL,
  volume INTEGER NOT NULL,
  quality TEXT NOT NULL,
  desired_price TEXT NOT NULL,
  location TEXT NOT NULL,
  is_public INTEGER NOT NULL DEFAULT 1,
  status TEXT NOT NULL DEFAULT 'available',
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS interests (
  id TEXT PRIMARY KEY,
  lot_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  created_at DATETIME,
  CONSTRAINT ux_interests_lot_buyer UNIQUE (lot_id, buyer_id)
);
CREATE TABLE IF NOT EXISTS negotiations (
  id TEXT PRIMARY KEY,
  lot_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  producer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  message_count INTEGER NOT NULL DEFAULT 0,
  last_update DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_negotiations_lot_buyer UNIQUE (lot_id, buyer_id)
);
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`

type interestFixture struct {
	svc      Service
	conn     *gorm.DB
	lot      *models.Lot
	buyer    *models.User
	producer uuid.UUID
}

func newInterestFixture(t *testing.T) *interestFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(interestsSchema).Error)
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		_ = sqlDB.Close()
	})

	svc, err := NewService(ServiceParams{
		DB:       db.FromGorm(conn),
		Repo:     NewRepository(conn),
		Lots:     lots.NewRepository(conn),
		Sessions: negotiations.NewRepository(conn),
		Buyers:   users.NewRepository(conn),
		Outbox:   outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)

	producer := uuid.New()
	buyer := &models.User{
		ID:           uuid.New(),
		Name:         "Torrefação Aurora",
		Email:        "compras@aurora.br",
		PasswordHash: "x",
		Role:         enums.UserRoleBuyer,
		Plan:         enums.SubscriptionPlanFree,
	}
	require.NoError(t, conn.Create(buyer).Error)

	lot := &models.Lot{
		ID:           uuid.New(),
		ProducerID:   producer,
		CoffeeType:   enums.CoffeeTypeRobusta,
		Harvest:      "2026",
		Volume:       60,
		Quality:      "Fino",
		DesiredPrice: decimal.NewFromInt(900),
		Location:     "Cacoal, RO",
		IsPublic:     true,
		Status:       enums.LotStatusAvailable,
	}
	require.NoError(t, conn.Create(lot).Error)

	return &interestFixture{svc: svc, conn: conn, lot: lot, buyer: buyer, producer: producer}
}

func TestExpressCreatesInterestSessionAndEvent(t *testing.T) {
	f := newInterestFixture(t)

	dto, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, f.buyer.Name, dto.BuyerName)
	assert.NotEqual(t, uuid.Nil, dto.SessionID)

	var session models.Negotiation
	require.NoError(t, f.conn.First(&session, "id = ?", dto.SessionID).Error)
	assert.Equal(t, f.producer, session.ProducerID)
	assert.Equal(t, enums.NegotiationStatusOpen, session.Status)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Where("event_type = ?", enums.EventInterestExpressed).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestExpressIsIdempotent(t *testing.T) {
	f := newInterestFixture(t)

	first, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	require.NoError(t, err)

	second, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SessionID, second.SessionID)

	var interestCount, sessionCount, eventCount int64
	require.NoError(t, f.conn.Model(&models.Interest{}).Count(&interestCount).Error)
	require.NoError(t, f.conn.Model(&models.Negotiation{}).Count(&sessionCount).Error)
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Count(&eventCount).Error)
	assert.Equal(t, int64(1), interestCount)
	assert.Equal(t, int64(1), sessionCount)
	assert.Equal(t, int64(1), eventCount)
}

func TestExpressRejectsOwnLot(t *testing.T) {
	f := newInterestFixture(t)

	owner := &models.User{
		ID:           f.producer,
		Name:         "Fazenda Dona Clara",
		Email:        "clara@fazenda.br",
		PasswordHash: "x",
		Role:         enums.UserRoleProducer,
		Plan:         enums.SubscriptionPlanPro,
	}
	require.NoError(t, f.conn.Create(owner).Error)

	_, err := f.svc.Express(context.Background(), f.producer, f.lot.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestExpressRejectsSoldLot(t *testing.T) {
	f := newInterestFixture(t)

	require.NoError(t, f.conn.Model(&models.Lot{}).
		Where("id = ?", f.lot.ID).
		UpdateColumn("status", enums.LotStatusSold).Error)

	_, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestExpressRejectsReservedLot(t *testing.T) {
	f := newInterestFixture(t)

	require.NoError(t, f.conn.Model(&models.Lot{}).
		Where("id = ?", f.lot.ID).
		UpdateColumn("status", enums.LotStatusReserved).Error)

	_, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	var interestCount int64
	require.NoError(t, f.conn.Model(&models.Interest{}).Count(&interestCount).Error)
	assert.Zero(t, interestCount)
}

func TestExpressRejectsPrivateLot(t *testing.T) {
	f := newInterestFixture(t)

	require.NoError(t, f.conn.Model(&models.Lot{}).
		Where("id = ?", f.lot.ID).
		UpdateColumn("is_public", false).Error)

	_, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	var sessionCount int64
	require.NoError(t, f.conn.Model(&models.Negotiation{}).Count(&sessionCount).Error)
	assert.Zero(t, sessionCount)
}

func TestExpressUnknownLot(t *testing.T) {
	f := newInterestFixture(t)

	_, err := f.svc.Express(context.Background(), f.buyer.ID, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListByLotRequiresOwner(t *testing.T) {
	f := newInterestFixture(t)

	_, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	require.NoError(t, err)

	mine, err := f.svc.ListByLot(context.Background(), f.producer, f.lot.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.ListByLot(context.Background(), uuid.New(), f.lot.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestListByBuyer(t *testing.T) {
	f := newInterestFixture(t)

	_, err := f.svc.Express(context.Background(), f.buyer.ID, f.lot.ID)
	require.NoError(t, err)

	rows, err := f.svc.ListByBuyer(context.Background(), f.buyer.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.lot.ID, rows[0].LotID)
}
