package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
)

// ListQuery captures the customer-facing listing parameters.
type ListQuery struct {
	PriceRange enums.PriceRange
	Sort       enums.SortOption
	Page       int
	PageSize   int
}

// ProductInput carries the admin create/update payload.
type ProductInput struct {
	Name          string          `json:"name" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	OfferPrice    decimal.Decimal `json:"offer_price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Image         string          `json:"image"`
	Description   string          `json:"description"`
	Metal         string          `json:"metal"`
	Stock         int             `json:"stock" validate:"gte=0"`
	Active        *bool           `json:"active"`
}
