package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	"github.com/cafeconecta/cafeconecta-backend/pkg/marketdata"
)

// QuoteDTO is the market board row handed to clients.
type QuoteDTO struct {
	Type          enums.CoffeeType `json:"type"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	PreviousPrice decimal.Decimal  `json:"previous_price"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent string           `json:"change_percent"`
	History7d     []float64        `json:"history_7d"`
	History30d    []float64        `json:"history_30d"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// UpdateQuoteRequest overwrites a commodity's current price.
type UpdateQuoteRequest struct {
	CoffeeType   string          `json:"coffee_type" validate:"required,oneof=Arábica Robusta"`
	CurrentPrice decimal.Decimal `json:"current_price" validate:"required"`
}

// CreateAlertRequest registers a price alert against a commodity quote.
type CreateAlertRequest struct {
	CoffeeType  string          `json:"coffee_type" validate:"required,oneof=Arábica Robusta"`
	TargetPrice decimal.Decimal `json:"target_price" validate:"required"`
}

// AlertDTO is the transport shape for a price alert.
type AlertDTO struct {
	ID          uuid.UUID            `json:"id"`
	ProducerID  uuid.UUID            `json:"producer_id"`
	CoffeeType  enums.CoffeeType     `json:"coffee_type"`
	TargetPrice decimal.Decimal      `json:"target_price"`
	BasePrice   decimal.Decimal      `json:"base_price"`
	Direction   enums.AlertDirection `json:"direction"`
	IsTriggered bool                 `json:"is_triggered"`
	TriggeredAt *time.Time           `json:"triggered_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// SuggestionDTO is the AI market recommendation shown on the board.
type SuggestionDTO struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// IndicatorDTO is the reference equity quote converted into BRL.
type IndicatorDTO struct {
	Symbol        string  `json:"symbol"`
	PriceUSD      float64 `json:"price_usd"`
	PriceBRL      float64 `json:"price_brl"`
	ChangePercent string  `json:"change_percent"`
	ExchangeRate  float64 `json:"exchange_rate"`
}

// FromQuoteModel maps a persisted quote into its DTO.
func FromQuoteModel(q *models.CoffeeQuote) *QuoteDTO {
	if q == nil {
		return nil
	}
	change := q.CurrentPrice.Sub(q.PreviousPrice)
	percent := "0.00"
	if !q.PreviousPrice.IsZero() {
		percent = change.Div(q.PreviousPrice).Mul(decimal.NewFromInt(100)).StringFixed(2)
	}
	return &QuoteDTO{
		Type:          q.Type,
		CurrentPrice:  q.CurrentPrice,
		PreviousPrice: q.PreviousPrice,
		Change:        change,
		ChangePercent: percent,
		History7d:     q.History7d,
		History30d:    q.History30d,
		UpdatedAt:     q.UpdatedAt,
	}
}

// FromAlertModel maps a persisted alert into its DTO.
func FromAlertModel(a *models.PriceAlert) *AlertDTO {
	if a == nil {
		return nil
	}
	return &AlertDTO{
		ID:          a.ID,
		ProducerID:  a.ProducerID,
		CoffeeType:  a.CoffeeType,
		TargetPrice: a.TargetPrice,
		BasePrice:   a.BasePrice,
		Direction:   a.Direction,
		IsTriggered: a.IsTriggered,
		TriggeredAt: a.TriggeredAt,
		CreatedAt:   a.CreatedAt,
	}
}

// FromIndicator maps the feed result into its DTO.
func FromIndicator(in *marketdata.GlobalIndicator) *IndicatorDTO {
	if in == nil {
		return nil
	}
	return &IndicatorDTO{
		Symbol:        in.Symbol,
		PriceUSD:      in.PriceUSD,
		PriceBRL:      in.PriceBRL,
		ChangePercent: in.ChangePercent,
		ExchangeRate:  in.ExchangeRate,
	}
}
