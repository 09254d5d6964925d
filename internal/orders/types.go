package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// PlaceInput carries the checkout payload. Cash on delivery creates the
// order directly; upi and card orders reference a confirmed payment.
type PlaceInput struct {
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	PaymentID       string         `json:"payment_id"`
	ShippingAddress *types.Address `json:"shipping_address"`
}

// PaymentInput starts a simulated payment for the current cart.
type PaymentInput struct {
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	ShippingAddress *types.Address `json:"shipping_address"`
}

// StatusInput carries the admin status transition payload.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// PaymentIntent is the pending-payment snapshot held in redis until the
// client confirms or the TTL expires.
type PaymentIntent struct {
	PaymentID       string              `json:"payment_id"`
	Method          enums.PaymentMethod `json:"method"`
	UserID          string              `json:"user_id"`
	UserEmail       string              `json:"user_email"`
	UserName        string              `json:"user_name"`
	Items           []types.OrderItem   `json:"items"`
	Amount          decimal.Decimal     `json:"amount"`
	ShippingAddress *types.Address      `json:"shipping_address,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// PaymentSummary is what the client sees after initiating a payment.
type PaymentSummary struct {
	PaymentID string              `json:"payment_id"`
	Method    enums.PaymentMethod `json:"method"`
	Amount    decimal.Decimal     `json:"amount"`
}
