package controllers

import (
	"net/http"

	"github.com/cafeconecta/cafeconecta-backend/api/responses"
	"github.com/cafeconecta/cafeconecta-backend/api/validators"
	marketsvc "github.com/cafeconecta/cafeconecta-backend/internal/market"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// ListQuotes serves the commodity quote board.
func ListQuotes(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotes, err := svc.ListQuotes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotes)
	}
}

// MarketSuggestion serves an AI-generated sales recommendation.
func MarketSuggestion(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suggestion, err := svc.Suggestion(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestion)
	}
}

// MarketIndicator serves the cached global market indicator.
func MarketIndicator(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indicator, err := svc.Indicator(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, indicator)
	}
}

// AdminUpdateQuote overwrites a commodity's current price and re-evaluates
// pending alerts.
func AdminUpdateQuote(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body marketsvc.UpdateQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.UpdateQuote(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CreateAlert registers a price alert for the producer.
func CreateAlert(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body marketsvc.CreateAlertRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alert, err := svc.CreateAlert(r.Context(), producerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, alert)
	}
}

// DeleteAlert removes one of the producer's own alerts.
func DeleteAlert(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alertID, err := pathUUID(r, "alertId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAlert(r.Context(), producerID, alertID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListAlerts serves the producer's own alerts.
func ListAlerts(svc marketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alerts, err := svc.ListAlerts(r.Context(), producerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, alerts)
	}
}
