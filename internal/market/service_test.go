package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/gemini"
	"github.com/cafeconecta/cafeconecta-backend/pkg/marketdata"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
)

const marketSchema = `
CREATE TABLE IF NOT EXISTS coffee_quotes (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL UNIQUE,
  current_price TEXT NOT NULL,
  previous_price TEXT NOT NULL,
  history_7d TEXT,
  history_30d TEXT,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS price_alerts (
  id TEXT PRIMARY KEY,
  producer_id TEXT NOT NULL,
  coffee_type TEXT NOT NULL,
  target_price TEXT NOT NULL,
  base_price TEXT NOT NULL,
  direction TEXT NOT NULL,
  is_triggered INTEGER NOT NULL DEFAULT 0,
  triggered_at DATETIME,
  created_at DATETIME
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

type stubSuggestionGenerator struct {
	text string
	err  error
}

func (s stubSuggestionGenerator) MarketSuggestion(context.Context, []gemini.QuoteSnapshot) (string, error) {
	return s.text, s.err
}

type stubIndicatorFeed struct {
	indicator *marketdata.GlobalIndicator
	err       error
}

func (s stubIndicatorFeed) FetchGlobalIndicator(context.Context, string, string) (*marketdata.GlobalIndicator, error) {
	return s.indicator, s.err
}

type marketFixture struct {
	svc  Service
	conn *gorm.DB
}

func newMarketFixture(t *testing.T, generator suggestionGenerator, feed indicatorFeed) *marketFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(marketSchema).Error)
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		_ = sqlDB.Close()
	})

	seed := []models.CoffeeQuote{
		{
			ID:            uuid.New(),
			Type:          enums.CoffeeTypeArabica,
			CurrentPrice:  decimal.NewFromFloat(1250.50),
			PreviousPrice: decimal.NewFromFloat(1240.00),
		},
		{
			ID:            uuid.New(),
			Type:          enums.CoffeeTypeRobusta,
			CurrentPrice:  decimal.NewFromFloat(840.20),
			PreviousPrice: decimal.NewFromFloat(855.00),
		},
	}
	for i := range seed {
		require.NoError(t, conn.Create(&seed[i]).Error)
	}

	svc, err := NewService(ServiceParams{
		DB:           db.FromGorm(conn),
		Repo:         NewRepository(conn),
		Outbox:       outbox.NewService(outbox.NewRepository(conn), nil),
		Generator:    generator,
		Feed:         feed,
		MarketConfig: config.MarketConfig{IndicatorSymbol: "AAPL", ExchangePair: "USD/BRL"},
	})
	require.NoError(t, err)
	return &marketFixture{svc: svc, conn: conn}
}

func TestListQuotesComputesChange(t *testing.T) {
	f := newMarketFixture(t, nil, nil)

	quotes, err := f.svc.ListQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	byType := map[enums.CoffeeType]QuoteDTO{}
	for _, quote := range quotes {
		byType[quote.Type] = quote
	}
	arabica := byType[enums.CoffeeTypeArabica]
	assert.Equal(t, "10.5", arabica.Change.String())
	assert.Equal(t, "0.85", arabica.ChangePercent)

	robusta := byType[enums.CoffeeTypeRobusta]
	assert.True(t, robusta.Change.IsNegative())
}

func TestUpdateQuoteRollsPreviousAndHistory(t *testing.T) {
	f := newMarketFixture(t, nil, nil)

	updated, err := f.svc.UpdateQuote(context.Background(), UpdateQuoteRequest{
		CoffeeType:   "Arábica",
		CurrentPrice: decimal.NewFromFloat(1300.00),
	})
	require.NoError(t, err)
	assert.Equal(t, "1250.5", updated.PreviousPrice.String())
	assert.Equal(t, "1300", updated.CurrentPrice.String())
	require.NotEmpty(t, updated.History7d)
	assert.Equal(t, 1300.00, updated.History7d[len(updated.History7d)-1])

	reloaded, err := f.svc.ListQuotes(context.Background())
	require.NoError(t, err)
	for _, quote := range reloaded {
		if quote.Type == enums.CoffeeTypeArabica {
			assert.Equal(t, "1300", quote.CurrentPrice.String())
			assert.Equal(t, updated.History7d, quote.History7d)
		}
	}
}

func TestCreateAlertSnapshotsBaseAndDerivesDirection(t *testing.T) {
	f := newMarketFixture(t, nil, nil)
	producerID := uuid.New()

	up, err := f.svc.CreateAlert(context.Background(), producerID, CreateAlertRequest{
		CoffeeType:  "Arábica",
		TargetPrice: decimal.NewFromInt(1400),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.AlertDirectionUp, up.Direction)
	assert.Equal(t, "1250.5", up.BasePrice.String())

	down, err := f.svc.CreateAlert(context.Background(), producerID, CreateAlertRequest{
		CoffeeType:  "Robusta",
		TargetPrice: decimal.NewFromInt(800),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.AlertDirectionDown, down.Direction)
}

func TestEvaluateAlertsFiresOnceOnCrossing(t *testing.T) {
	f := newMarketFixture(t, nil, nil)
	producerID := uuid.New()

	_, err := f.svc.CreateAlert(context.Background(), producerID, CreateAlertRequest{
		CoffeeType:  "Arábica",
		TargetPrice: decimal.NewFromInt(1300),
	})
	require.NoError(t, err)

	// Below target, nothing fires.
	fired, err := f.svc.EvaluateAlerts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fired)

	// UpdateQuote crosses the target and evaluates alerts itself.
	_, err = f.svc.UpdateQuote(context.Background(), UpdateQuoteRequest{
		CoffeeType:   "Arábica",
		CurrentPrice: decimal.NewFromInt(1320),
	})
	require.NoError(t, err)

	var alerts []models.PriceAlert
	require.NoError(t, f.conn.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsTriggered)
	require.NotNil(t, alerts[0].TriggeredAt)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Where("event_type = ?", enums.EventAlertTriggered).Find(&events).Error)
	assert.Len(t, events, 1)

	// Price swings back and crosses again; the alert stays triggered.
	_, err = f.svc.UpdateQuote(context.Background(), UpdateQuoteRequest{
		CoffeeType:   "Arábica",
		CurrentPrice: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateQuote(context.Background(), UpdateQuoteRequest{
		CoffeeType:   "Arábica",
		CurrentPrice: decimal.NewFromInt(1350),
	})
	require.NoError(t, err)

	require.NoError(t, f.conn.Where("event_type = ?", enums.EventAlertTriggered).Find(&events).Error)
	assert.Len(t, events, 1, "alert fired more than once")
}

func TestEvaluateAlertsDownDirection(t *testing.T) {
	f := newMarketFixture(t, nil, nil)
	producerID := uuid.New()

	_, err := f.svc.CreateAlert(context.Background(), producerID, CreateAlertRequest{
		CoffeeType:  "Robusta",
		TargetPrice: decimal.NewFromInt(820),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateQuote(context.Background(), UpdateQuoteRequest{
		CoffeeType:   "Robusta",
		CurrentPrice: decimal.NewFromInt(810),
	})
	require.NoError(t, err)

	var alerts []models.PriceAlert
	require.NoError(t, f.conn.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsTriggered)
}

func TestDeleteAlertRequiresOwner(t *testing.T) {
	f := newMarketFixture(t, nil, nil)
	producerID := uuid.New()

	alert, err := f.svc.CreateAlert(context.Background(), producerID, CreateAlertRequest{
		CoffeeType:  "Arábica",
		TargetPrice: decimal.NewFromInt(1400),
	})
	require.NoError(t, err)

	err = f.svc.DeleteAlert(context.Background(), uuid.New(), alert.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	require.NoError(t, f.svc.DeleteAlert(context.Background(), producerID, alert.ID))

	rest, err := f.svc.ListAlerts(context.Background(), producerID)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestSuggestionPrefersGenerator(t *testing.T) {
	f := newMarketFixture(t, stubSuggestionGenerator{text: "Venda agora."}, nil)

	got, err := f.svc.Suggestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Venda agora.", got.Text)
}

func TestSuggestionFallsBackOnArabicaTrend(t *testing.T) {
	f := newMarketFixture(t, stubSuggestionGenerator{err: errors.New("unavailable")}, nil)

	got, err := f.svc.Suggestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackSuggestionRising, got.Text)

	_, err = f.svc.UpdateQuote(context.Background(), UpdateQuoteRequest{
		CoffeeType:   "Arábica",
		CurrentPrice: decimal.NewFromInt(1100),
	})
	require.NoError(t, err)

	got, err = f.svc.Suggestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackSuggestionVolatile, got.Text)
}

func TestIndicatorComesFromFeed(t *testing.T) {
	f := newMarketFixture(t, nil, stubIndicatorFeed{indicator: &marketdata.GlobalIndicator{
		Symbol:        "AAPL",
		PriceUSD:      210,
		PriceBRL:      1092,
		ChangePercent: "5.00",
		ExchangeRate:  5.2,
	}})

	got, err := f.svc.Indicator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 1092.0, got.PriceBRL)
}

func TestIndicatorWithoutFeedIsDependencyError(t *testing.T) {
	f := newMarketFixture(t, nil, nil)

	_, err := f.svc.Indicator(context.Background())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

type memoryCache struct {
	values map[string]string
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	m.sets++
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryCache) IndicatorCacheKey() string { return "cache:market:indicator" }

func newCachedIndicatorService(t *testing.T, feed indicatorFeed, cache indicatorCache) Service {
	t.Helper()
	f := newMarketFixture(t, nil, nil)

	svc, err := NewService(ServiceParams{
		DB:           db.FromGorm(f.conn),
		Repo:         NewRepository(f.conn),
		Outbox:       outbox.NewService(outbox.NewRepository(f.conn), nil),
		Feed:         feed,
		Cache:        cache,
		MarketConfig: config.MarketConfig{IndicatorSymbol: "AAPL", ExchangePair: "USD/BRL"},
	})
	require.NoError(t, err)
	return svc
}

func TestRefreshIndicatorWritesCache(t *testing.T) {
	cache := newMemoryCache()
	svc := newCachedIndicatorService(t, stubIndicatorFeed{indicator: &marketdata.GlobalIndicator{
		Symbol:   "AAPL",
		PriceUSD: 210,
		PriceBRL: 1092,
	}}, cache)

	_, err := svc.RefreshIndicator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Contains(t, cache.values[cache.IndicatorCacheKey()], `"symbol":"AAPL"`)
}

func TestIndicatorPrefersCacheOverFeed(t *testing.T) {
	cache := newMemoryCache()
	cache.values[cache.IndicatorCacheKey()] = `{"symbol":"AAPL","price_usd":200,"price_brl":1040,"change_percent":"1.00","exchange_rate":5.2}`
	svc := newCachedIndicatorService(t, stubIndicatorFeed{err: errors.New("feed down")}, cache)

	got, err := svc.Indicator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1040.0, got.PriceBRL)
}

func TestIndicatorFallsBackToFeedOnCacheMiss(t *testing.T) {
	cache := newMemoryCache()
	svc := newCachedIndicatorService(t, stubIndicatorFeed{indicator: &marketdata.GlobalIndicator{
		Symbol:   "AAPL",
		PriceBRL: 1092,
	}}, cache)

	got, err := svc.Indicator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1092.0, got.PriceBRL)
	assert.Equal(t, 1, cache.sets)
}
