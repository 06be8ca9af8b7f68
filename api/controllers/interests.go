package controllers

import (
	"net/http"

	"github.com/cafeconecta/cafeconecta-backend/api/responses"
	"github.com/cafeconecta/cafeconecta-backend/api/validators"
	interestsvc "github.com/cafeconecta/cafeconecta-backend/internal/interests"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/pagination"
)

// ExpressInterest records buyer interest in a lot and opens the negotiation
// session. Repeated calls return the existing interest.
func ExpressInterest(svc interestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lotID, err := pathUUID(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		interest, err := svc.Express(r.Context(), buyerID, lotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, interest)
	}
}

// ListLotInterests serves the interests on a lot to its producer.
func ListLotInterests(svc interestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lotID, err := pathUUID(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		interests, err := svc.ListByLot(r.Context(), producerID, lotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, interests)
	}
}

// ListMyInterests serves the buyer's own expressed interests.
func ListMyInterests(svc interestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		interests, err := svc.ListByBuyer(r.Context(), buyerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, interests)
	}
}
