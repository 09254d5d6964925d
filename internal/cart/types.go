package cart

import (
	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// Cart is the customer-facing view of a cart with derived totals.
type Cart struct {
	Items     []types.CartLine `json:"items"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	ItemCount int              `json:"item_count"`
}

func buildCart(lines []types.CartLine) Cart {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
		count += line.Quantity
	}
	if lines == nil {
		lines = []types.CartLine{}
	}
	return Cart{
		Items:     lines,
		Subtotal:  subtotal,
		ItemCount: count,
	}
}
