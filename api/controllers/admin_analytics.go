package controllers

import (
	"net/http"
	"time"

	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	"github.com/aurelia-jewels/aurelia-backend/internal/analytics"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	"github.com/aurelia-jewels/aurelia-backend/internal/identity"
	"github.com/aurelia-jewels/aurelia-backend/internal/orders"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// DashboardReport bundles everything the admin dashboard renders in one
// response.
type DashboardReport struct {
	Window            analytics.Window          `json:"window"`
	Summary           analytics.Summary         `json:"summary"`
	PopularCategories []analytics.CategoryStat  `json:"popular_categories"`
	StatusBreakdown   map[enums.OrderStatus]int `json:"status_breakdown"`
	MonthlyRevenue    []analytics.MonthRevenue  `json:"monthly_revenue"`
	RecentOrders      []types.Order             `json:"recent_orders"`
}

// AdminAnalytics fetches the records and aggregates them with the pure
// rollup functions. The window only narrows order-derived figures.
func AdminAnalytics(ordersSvc orders.Service, identitySvc identity.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		window := analytics.ParseWindow(r.URL.Query().Get("range"))
		now := time.Now().UTC()

		allOrders, err := ordersSvc.ListAll(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		users, err := identitySvc.ListUsers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var products []types.Product
		for _, category := range enums.AllCategories() {
			items, err := catalogSvc.ListAdmin(ctx, category)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			products = append(products, items...)
		}

		windowed := analytics.FilterByWindow(allOrders, window, now)

		report := DashboardReport{
			Window:            window,
			Summary:           analytics.Summarize(windowed, users, products),
			PopularCategories: analytics.PopularCategories(windowed),
			StatusBreakdown:   analytics.StatusBreakdown(windowed),
			MonthlyRevenue:    analytics.MonthlyRevenue(allOrders, now),
			RecentOrders:      analytics.RecentOrders(allOrders),
		}
		responses.WriteSuccess(w, report)
	}
}
