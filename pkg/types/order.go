package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
)

// Address is a plain shipping address. The storefront collects it at
// checkout and stores it verbatim on the order.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItem is a frozen copy of a cart line at checkout time.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  enums.Category  `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// LineTotal is Price multiplied by Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              string              `json:"id"`
	UserEmail       string              `json:"user_email"`
	UserName        string              `json:"user_name"`
	Items           []OrderItem         `json:"items"`
	Total           decimal.Decimal     `json:"total"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentID       string              `json:"payment_id,omitempty"`
	ShippingAddress *Address            `json:"shipping_address,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ItemsTotal sums line totals. Order.Total is always derived from this.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ContainsCategory reports whether any line item belongs to the category.
func (o Order) ContainsCategory(category enums.Category) bool {
	for _, item := range o.Items {
		if item.Category == category {
			return true
		}
	}
	return false
}

// NormalizeOrder maps a raw upstream order record onto an Order. Legacy
// records spell the timestamp as date, createdAt, or orderDate; the first
// parseable one wins.
func NormalizeOrder(raw map[string]any) Order {
	o := Order{
		ID:        CoerceString(raw["id"]),
		UserEmail: NormalizeEmail(CoerceString(raw["userEmail"])),
		UserName:  CoerceString(raw["userName"]),
		Total:     CoerceDecimal(raw["total"]),
		PaymentID: CoerceString(raw["paymentId"]),
	}

	status, err := enums.ParseOrderStatus(CoerceString(raw["status"]))
	if err != nil {
		status = enums.OrderStatusPending
	}
	o.Status = status

	if method, err := enums.ParsePaymentMethod(CoerceString(raw["paymentMethod"])); err == nil {
		o.PaymentMethod = method
	}

	for _, key := range []string{"date", "createdAt", "orderDate"} {
		if t := CoerceTime(raw[key]); !t.IsZero() {
			o.CreatedAt = t
			break
		}
	}

	items, _ := raw["items"].([]any)
	for _, entry := range items {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := OrderItem{
			ProductID: CoerceString(m["id"]),
			Name:      CoerceString(m["name"]),
			Price:     CoerceDecimal(m["price"]),
			Quantity:  CoerceInt(m["quantity"], 1),
			Image:     CoerceString(m["image"]),
		}
		if item.ProductID == "" {
			item.ProductID = CoerceString(m["productId"])
		}
		if item.Price.IsZero() {
			item.Price = CoerceDecimal(m["offerPrice"])
		}
		if cat, err := enums.ParseCategory(CoerceString(m["category"])); err == nil {
			item.Category = cat
		} else {
			item.Category = enums.CategoryOther
		}
		o.Items = append(o.Items, item)
	}

	if o.Total.IsZero() && len(o.Items) > 0 {
		o.Total = o.ItemsTotal()
	}

	if addr, ok := raw["shippingAddress"].(map[string]any); ok {
		o.ShippingAddress = &Address{
			Line1:      CoerceString(addr["line1"]),
			Line2:      CoerceString(addr["line2"]),
			City:       CoerceString(addr["city"]),
			State:      CoerceString(addr["state"]),
			PostalCode: CoerceString(addr["postalCode"]),
			Country:    CoerceString(addr["country"]),
			Phone:      CoerceString(addr["phone"]),
		}
	}

	return o
}
