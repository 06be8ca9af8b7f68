package controllers

import (
	"net/http"
	"strings"

	"github.com/cafeconecta/cafeconecta-backend/api/responses"
	"github.com/cafeconecta/cafeconecta-backend/api/validators"
	tipsvc "github.com/cafeconecta/cafeconecta-backend/internal/tips"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// ListTips serves published technical articles, optionally by category.
func ListTips(svc tipsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(r.URL.Query().Get("category"))

		tips, err := svc.List(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tips)
	}
}

// AdminCreateTip publishes a new technical article.
func AdminCreateTip(svc tipsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tipsvc.CreateTipRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tip, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tip)
	}
}
