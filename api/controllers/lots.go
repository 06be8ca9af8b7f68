package controllers

import (
	"net/http"
	"strings"

	"github.com/cafeconecta/cafeconecta-backend/api/middleware"
	"github.com/cafeconecta/cafeconecta-backend/api/responses"
	"github.com/cafeconecta/cafeconecta-backend/api/validators"
	lotsvc "github.com/cafeconecta/cafeconecta-backend/internal/lots"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/pagination"
)

// CreateLot handles lot creation for producers, enforcing the plan quota.
func CreateLot(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := enums.ParseSubscriptionPlan(middleware.PlanFromContext(r.Context()))
		if err != nil {
			plan = enums.SubscriptionPlanFree
		}

		var body lotsvc.CreateLotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.Create(r.Context(), producerID, plan, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, lot)
	}
}

// ListPublicLots serves the cursor-paginated marketplace feed.
func ListPublicLots(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPublic(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// GetLot serves a single lot, hiding private lots from non-owners.
func GetLot(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lotID, err := pathUUID(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.Get(r.Context(), viewerID, lotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lot)
	}
}

// ListMyLots serves the producer's own lots, private ones included.
func ListMyLots(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producerID, err := actorUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lots, err := svc.ListByProducer(r.Context(), producerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lots)
	}
}

// DeleteLot removes an available lot owned by the caller.
func DeleteLot(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), producerID, lotID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// TransitionLot moves a producer's lot to reserved. Sold is only ever set by
// closing a negotiation.
func TransitionLot(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body lotsvc.TransitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseLotStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		lot, err := svc.Transition(r.Context(), producerID, lotID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lot)
	}
}

// AdminSetFeaturedLot flips the marketplace highlight flag on any lot.
func AdminSetFeaturedLot(svc lotsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotID, err := pathUUID(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body lotsvc.SetFeaturedRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.SetFeatured(r.Context(), lotID, body.Featured)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lot)
	}
}
