package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	"github.com/cafeconecta/cafeconecta-backend/pkg/marketdata"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox/payloads"
)

// Fallback suggestions cover generator outages, keyed on the Arábica trend.
const (
	fallbackSuggestionRising   = "O mercado de Arábica mostra tendência de alta. Se possível, segure lotes de alta pontuação para capturar prêmios melhores na próxima semana."
	fallbackSuggestionVolatile = "A volatilidade atual sugere cautela. Recomendamos fixar preços apenas para cobrir custos operacionais imediatos e aguardar estabilidade do dólar."
)

// Service defines the behavior needed by the market controller and the
// feed-refresh cron job.
type Service interface {
	ListQuotes(ctx context.Context) ([]QuoteDTO, error)
	UpdateQuote(ctx context.Context, req UpdateQuoteRequest) (*QuoteDTO, error)
	CreateAlert(ctx context.Context, producerID uuid.UUID, req CreateAlertRequest) (*AlertDTO, error)
	DeleteAlert(ctx context.Context, producerID, alertID uuid.UUID) error
	ListAlerts(ctx context.Context, producerID uuid.UUID) ([]AlertDTO, error)
	EvaluateAlerts(ctx context.Context) (int, error)
	Suggestion(ctx context.Context) (*SuggestionDTO, error)
	Indicator(ctx context.Context) (*IndicatorDTO, error)
	RefreshIndicator(ctx context.Context) (*IndicatorDTO, error)
}

type suggestionGenerator interface {
	MarketSuggestion(ctx context.Context, quotes []gemini.QuoteSnapshot) (string, error)
}

type indicatorFeed interface {
	FetchGlobalIndicator(ctx context.Context, symbol, exchangePair string) (*marketdata.GlobalIndicator, error)
}

type indicatorCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	IndicatorCacheKey() string
}

// indicatorCacheTTL outlives the worker refresh interval so a missed cycle
// does not empty the cache.
const indicatorCacheTTL = 45 * time.Minute

type service struct {
	db        *db.Client
	repo      *Repository
	outbox    *outbox.Service
	generator suggestionGenerator
	feed      indicatorFeed
	cache     indicatorCache
	marketCfg config.MarketConfig
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a market service.
// Generator and Feed are optional; without them the suggestion endpoint
// serves canned advice and the indicator endpoint reports a dependency error.
type ServiceParams struct {
	DB           *db.Client
	Repo         *Repository
	Outbox       *outbox.Service
	Generator    suggestionGenerator
	Feed         indicatorFeed
	Cache        indicatorCache
	MarketConfig config.MarketConfig
	Logger       *logger.Logger
}

// NewService constructs a market service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("market repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:        params.DB,
		repo:      params.Repo,
		outbox:    params.Outbox,
		generator: params.Generator,
		feed:      params.Feed,
		cache:     params.Cache,
		marketCfg: params.MarketConfig,
		logg:      params.Logger,
	}, nil
}

func (s *service) ListQuotes(ctx context.Context) ([]QuoteDTO, error) {
	rows, err := s.repo.ListQuotes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}
	out := make([]QuoteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromQuoteModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateQuote(ctx context.Context, req UpdateQuoteRequest) (*QuoteDTO, error) {
	coffeeType, err := enums.ParseCoffeeType(req.CoffeeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coffee type")
	}
	if req.CurrentPrice.IsNegative() || req.CurrentPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	quote, err := s.repo.UpdateQuote(ctx, coffeeType, req.CurrentPrice)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quote")
	}

	if _, err := s.EvaluateAlerts(ctx); err != nil && s.logg != nil {
		s.logg.Error(ctx, "alert evaluation after quote update failed", err)
	}
	return FromQuoteModel(quote), nil
}

func (s *service) CreateAlert(ctx context.Context, producerID uuid.UUID, req CreateAlertRequest) (*AlertDTO, error) {
	coffeeType, err := enums.ParseCoffeeType(req.CoffeeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coffee type")
	}
	if req.TargetPrice.IsNegative() || req.TargetPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target price must be positive")
	}

	quote, err := s.repo.FindQuoteByType(ctx, coffeeType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}

	direction := enums.AlertDirectionDown
	if req.TargetPrice.GreaterThanOrEqual(quote.CurrentPrice) {
		direction = enums.AlertDirectionUp
	}

	alert := &models.PriceAlert{
		ID:          uuid.New(),
		ProducerID:  producerID,
		CoffeeType:  coffeeType,
		TargetPrice: req.TargetPrice,
		BasePrice:   quote.CurrentPrice,
		Direction:   direction,
	}
	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create alert")
	}
	return FromAlertModel(alert), nil
}

func (s *service) DeleteAlert(ctx context.Context, producerID, alertID uuid.UUID) error {
	alert, err := s.repo.FindAlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load alert")
	}
	if alert.ProducerID != producerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "alert belongs to another producer")
	}
	if err := s.repo.DeleteAlert(ctx, alertID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete alert")
	}
	return nil
}

func (s *service) ListAlerts(ctx context.Context, producerID uuid.UUID) ([]AlertDTO, error) {
	rows, err := s.repo.ListAlertsByProducer(ctx, producerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list alerts")
	}
	out := make([]AlertDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromAlertModel(&rows[i]))
	}
	return out, nil
}

// EvaluateAlerts fires every untriggered alert whose commodity has crossed
// its target and returns how many fired. An alert fires at most once; the
// triggered flag flip and the outbox event share one transaction.
func (s *service) EvaluateAlerts(ctx context.Context) (int, error) {
	alerts, err := s.repo.ListUntriggeredAlerts(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list untriggered alerts")
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	quotes, err := s.repo.ListQuotes(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}
	current := make(map[enums.CoffeeType]models.CoffeeQuote, len(quotes))
	for _, quote := range quotes {
		current[quote.Type] = quote
	}

	fired := 0
	for _, alert := range alerts {
		quote, ok := current[alert.CoffeeType]
		if !ok || !crossed(alert, quote) {
			continue
		}

		alert := alert
		now := time.Now().UTC()
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			marked, err := s.repo.MarkTriggeredTx(tx, alert.ID, now)
			if err != nil {
				return err
			}
			if !marked {
				return nil
			}
			fired++
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventAlertTriggered,
				AggregateType: enums.AggregateAlert,
				AggregateID:   alert.ID,
				Data: payloads.AlertTriggeredEvent{
					AlertID:      alert.ID,
					UserID:       alert.ProducerID,
					CoffeeType:   alert.CoffeeType,
					Direction:    alert.Direction,
					TargetPrice:  alert.TargetPrice,
					CurrentPrice: quote.CurrentPrice,
					TriggeredAt:  now,
				},
			})
		})
		if err != nil {
			return fired, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "trigger alert")
		}
	}

	if fired > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "fired", fired), "price alerts triggered")
	}
	return fired, nil
}

// crossed reports whether the quote satisfies the alert's one-way condition.
func crossed(alert models.PriceAlert, quote models.CoffeeQuote) bool {
	switch alert.Direction {
	case enums.AlertDirectionUp:
		return quote.CurrentPrice.GreaterThanOrEqual(alert.TargetPrice)
	case enums.AlertDirectionDown:
		return quote.CurrentPrice.LessThanOrEqual(alert.TargetPrice)
	}
	return false
}

func (s *service) Suggestion(ctx context.Context) (*SuggestionDTO, error) {
	quotes, err := s.repo.ListQuotes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}

	text := ""
	if s.generator != nil {
		snapshots := make([]gemini.QuoteSnapshot, 0, len(quotes))
		for _, quote := range quotes {
			snapshots = append(snapshots, gemini.QuoteSnapshot{
				Type:          string(quote.Type),
				CurrentPrice:  quote.CurrentPrice.StringFixed(2),
				PreviousPrice: quote.PreviousPrice.StringFixed(2),
			})
		}
		generated, err := s.generator.MarketSuggestion(ctx, snapshots)
		if err == nil {
			text = generated
		} else if s.logg != nil {
			s.logg.Warn(ctx, "market suggestion generation failed, using fallback")
		}
	}
	if text == "" {
		text = fallbackSuggestion(quotes)
	}

	return &SuggestionDTO{Text: text, GeneratedAt: time.Now().UTC()}, nil
}

// fallbackSuggestion picks a canned recommendation off the Arábica trend.
func fallbackSuggestion(quotes []models.CoffeeQuote) string {
	for _, quote := range quotes {
		if quote.Type == enums.CoffeeTypeArabica && quote.CurrentPrice.GreaterThan(quote.PreviousPrice) {
			return fallbackSuggestionRising
		}
	}
	return fallbackSuggestionVolatile
}

// Indicator serves the cached global indicator when one is fresh enough,
// falling back to a live fetch on a cache miss.
func (s *service) Indicator(ctx context.Context) (*IndicatorDTO, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.IndicatorCacheKey())
		if err == nil && raw != "" {
			var cached IndicatorDTO
			if unmarshalErr := json.Unmarshal([]byte(raw), &cached); unmarshalErr == nil {
				return &cached, nil
			}
		}
	}
	return s.RefreshIndicator(ctx)
}

// RefreshIndicator pulls the indicator from the external feed and rewrites
// the cache. The worker calls this on every cron cycle.
func (s *service) RefreshIndicator(ctx context.Context) (*IndicatorDTO, error) {
	if s.feed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "market feed not configured")
	}
	indicator, err := s.feed.FetchGlobalIndicator(ctx, s.marketCfg.IndicatorSymbol, s.marketCfg.ExchangePair)
	if err != nil {
		return nil, err
	}
	dto := FromIndicator(indicator)

	if s.cache != nil {
		payload, marshalErr := json.Marshal(dto)
		if marshalErr == nil {
			if setErr := s.cache.Set(ctx, s.cache.IndicatorCacheKey(), string(payload), indicatorCacheTTL); setErr != nil && s.logg != nil {
				s.logg.Warn(ctx, "failed to cache market indicator")
			}
		}
	}
	return dto, nil
}
