package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
)

// Product is the canonical catalog record. Upstream collections carry a
// looser shape; NormalizeProduct maps them onto this once at ingestion.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      enums.Category  `json:"category"`
	Price         decimal.Decimal `json:"price"`
	OfferPrice    decimal.Decimal `json:"offer_price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Image         string          `json:"image"`
	Description   string          `json:"description,omitempty"`
	Metal         string          `json:"metal,omitempty"`
	Stock         int             `json:"stock"`
	Active        bool            `json:"active"`
	Deleted       bool            `json:"deleted"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// Purchasable reports whether the product may appear in customer reads.
func (p Product) Purchasable() bool {
	return p.Active && !p.Deleted
}

// NormalizeProduct maps a raw upstream record onto a Product. The category
// is stamped from the source collection, not trusted from the record.
// Price and OfferPrice default to each other when one is missing.
func NormalizeProduct(raw map[string]any, category enums.Category) Product {
	p := Product{
		ID:          CoerceString(raw["id"]),
		Name:        CoerceString(raw["name"]),
		Category:    category,
		Price:       CoerceDecimal(raw["price"]),
		OfferPrice:  CoerceDecimal(raw["offerPrice"]),
		Image:       CoerceString(raw["image"]),
		Description: CoerceString(raw["description"]),
		Metal:       CoerceString(raw["metal"]),
		Stock:       CoerceInt(raw["stock"], 0),
		Active:      true,
	}

	if p.OfferPrice.IsZero() {
		p.OfferPrice = p.Price
	}
	if p.Price.IsZero() {
		p.Price = p.OfferPrice
	}

	p.OriginalPrice = CoerceDecimal(raw["originalPrice"])
	if p.OriginalPrice.IsZero() {
		p.OriginalPrice = p.Price
	}

	if v, ok := raw["active"]; ok {
		p.Active = CoerceBool(v, true)
	} else if v, ok := raw["isActive"]; ok {
		p.Active = CoerceBool(v, true)
	}
	if v, ok := raw["deleted"]; ok {
		p.Deleted = CoerceBool(v, false)
	}

	p.CreatedAt = CoerceTime(raw["createdAt"])
	return p
}

// CartLine is a priced snapshot of a product at add-to-cart time.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  enums.Category  `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is UnitPrice multiplied by Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartLineFromProduct snapshots a product into a line with the given quantity.
func CartLineFromProduct(p Product, quantity int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.OfferPrice,
		Image:     p.Image,
		Quantity:  quantity,
	}
}
