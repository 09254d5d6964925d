// Package analytics computes the admin dashboard rollups. Every function
// here is pure: callers fetch the records, these functions only aggregate.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// Window restricts aggregates to a trailing time range.
type Window string

const (
	WindowAll   Window = "all"
	WindowMonth Window = "month"
	WindowWeek  Window = "week"
)

// ParseWindow maps a query value onto a Window. Unknown values fall back
// to all, matching the dashboard default.
func ParseWindow(value string) Window {
	switch Window(strings.ToLower(strings.TrimSpace(value))) {
	case WindowMonth:
		return WindowMonth
	case WindowWeek:
		return WindowWeek
	default:
		return WindowAll
	}
}

// Summary is the headline card row of the dashboard.
type Summary struct {
	Revenue           decimal.Decimal `json:"revenue"`
	OrderCount        int             `json:"order_count"`
	UserCount         int             `json:"user_count"`
	ProductCount      int             `json:"product_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// CategoryStat ranks a category by how often it was bought.
type CategoryStat struct {
	Category  enums.Category  `json:"category"`
	ItemCount int             `json:"item_count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// MonthRevenue is one bar of the revenue chart, labelled YYYY-MM.
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// FilterByWindow keeps the orders placed after the window cutoff. Orders
// without a timestamp only survive the all window.
func FilterByWindow(orders []types.Order, window Window, now time.Time) []types.Order {
	if window == WindowAll {
		return orders
	}

	var cutoff time.Time
	switch window {
	case WindowWeek:
		cutoff = now.AddDate(0, 0, -7)
	case WindowMonth:
		cutoff = now.AddDate(0, -1, 0)
	default:
		return orders
	}

	kept := make([]types.Order, 0, len(orders))
	for _, order := range orders {
		if order.CreatedAt.IsZero() {
			continue
		}
		if !order.CreatedAt.Before(cutoff) {
			kept = append(kept, order)
		}
	}
	return kept
}

// Summarize computes the headline figures over an already-windowed order set.
func Summarize(orders []types.Order, users []types.User, products []types.Product) Summary {
	s := Summary{
		OrderCount:   len(orders),
		UserCount:    len(users),
		ProductCount: len(products),
	}
	for _, order := range orders {
		s.Revenue = s.Revenue.Add(order.Total)
	}
	if s.OrderCount > 0 {
		s.AverageOrderValue = s.Revenue.DivRound(decimal.NewFromInt(int64(s.OrderCount)), 2)
	}
	return s
}

// PopularCategories ranks categories by sold line-item count, at most five.
// Revenue attributes the full order total to every category that order
// touches, matching how the dashboard always displayed it.
func PopularCategories(orders []types.Order) []CategoryStat {
	counts := map[enums.Category]int{}
	for _, order := range orders {
		for _, item := range order.Items {
			counts[item.Category] += item.Quantity
		}
	}

	stats := make([]CategoryStat, 0, len(counts))
	for category, count := range counts {
		revenue := decimal.Zero
		for _, order := range orders {
			if order.ContainsCategory(category) {
				revenue = revenue.Add(order.Total)
			}
		}
		stats = append(stats, CategoryStat{
			Category:  category,
			ItemCount: count,
			Revenue:   revenue,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].ItemCount != stats[j].ItemCount {
			return stats[i].ItemCount > stats[j].ItemCount
		}
		return stats[i].Category < stats[j].Category
	})

	if len(stats) > 5 {
		stats = stats[:5]
	}
	return stats
}

// StatusBreakdown counts orders per lifecycle status.
func StatusBreakdown(orders []types.Order) map[enums.OrderStatus]int {
	breakdown := make(map[enums.OrderStatus]int, len(enums.AllOrderStatuses()))
	for _, status := range enums.AllOrderStatuses() {
		breakdown[status] = 0
	}
	for _, order := range orders {
		breakdown[order.Status]++
	}
	return breakdown
}

// MonthlyRevenue buckets order totals into the trailing six calendar
// months, oldest first. Months without sales still appear with zero.
func MonthlyRevenue(orders []types.Order, now time.Time) []MonthRevenue {
	const months = 6

	buckets := make([]MonthRevenue, 0, months)
	index := make(map[string]int, months)
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, -now.Day()+1)
		label := month.Format("2006-01")
		index[label] = len(buckets)
		buckets = append(buckets, MonthRevenue{Month: label, Revenue: decimal.Zero})
	}

	for _, order := range orders {
		if order.CreatedAt.IsZero() {
			continue
		}
		label := order.CreatedAt.Format("2006-01")
		if i, ok := index[label]; ok {
			buckets[i].Revenue = buckets[i].Revenue.Add(order.Total)
		}
	}
	return buckets
}

// RecentOrders returns the five most recent orders.
func RecentOrders(orders []types.Order) []types.Order {
	sorted := make([]types.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	return sorted
}
