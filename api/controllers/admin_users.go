package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurelia-jewels/aurelia-backend/api/middleware"
	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	"github.com/aurelia-jewels/aurelia-backend/api/validators"
	"github.com/aurelia-jewels/aurelia-backend/internal/identity"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
)

type userActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// AdminUsersList returns every known account.
func AdminUsersList(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users)
	}
}

// AdminUserSetActive blocks or reactivates an account.
func AdminUserSetActive(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body userActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.SetActive(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "userId"), *body.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
