package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	"github.com/aurelia-jewels/aurelia-backend/api/validators"
	"github.com/aurelia-jewels/aurelia-backend/internal/orders"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
)

// AdminOrdersList returns every order across all customers.
func AdminOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

// AdminOrderUpdateStatus applies a lifecycle transition to an order.
func AdminOrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body orders.StatusInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
