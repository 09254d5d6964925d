package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	"github.com/aurelia-jewels/aurelia-backend/api/validators"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/pagination"
)

// CatalogList returns a filtered, sorted, paginated category listing.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := enums.ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		query, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), category, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CatalogSearch matches products by name or description across categories.
func CatalogSearch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "search query is required"))
			return
		}

		items, err := svc.Search(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CatalogProduct returns a single purchasable product.
func CatalogProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func parseListQuery(r *http.Request) (catalog.ListQuery, error) {
	priceRange, err := enums.ParsePriceRange(validators.ParseQueryString(r, "priceRange", ""))
	if err != nil {
		return catalog.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price range")
	}
	sort, err := enums.ParseSortOption(validators.ParseQueryString(r, "sort", ""))
	if err != nil {
		return catalog.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort option")
	}
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		return catalog.ListQuery{}, err
	}
	pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, pagination.MaxPageSize)
	if err != nil {
		return catalog.ListQuery{}, err
	}

	return catalog.ListQuery{
		PriceRange: priceRange,
		Sort:       sort,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
