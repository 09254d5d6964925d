package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurelia-jewels/aurelia-backend/api/controllers"
	"github.com/aurelia-jewels/aurelia-backend/api/middleware"
	"github.com/aurelia-jewels/aurelia-backend/internal/cart"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	"github.com/aurelia-jewels/aurelia-backend/internal/identity"
	"github.com/aurelia-jewels/aurelia-backend/internal/orders"
	"github.com/aurelia-jewels/aurelia-backend/internal/wishlist"
	"github.com/aurelia-jewels/aurelia-backend/pkg/auth/session"
	"github.com/aurelia-jewels/aurelia-backend/pkg/config"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Upstream controllers.Pinger
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	Catalog  catalog.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Identity identity.Service
	Orders   orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.Upstream))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Identity, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Identity, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Identity, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Identity, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Get("/session", controllers.AuthSession(deps.Identity, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/search", controllers.CatalogSearch(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.CatalogProduct(deps.Catalog, logg))
		r.Get("/{category}", controllers.CatalogList(deps.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Put("/{productId}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/{productId}", controllers.CartRemove(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
			r.Delete("/", controllers.WishlistClear(deps.Wishlist, logg))
			r.Post("/{productId}/move-to-cart", controllers.WishlistMoveToCart(deps.Wishlist, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Post("/", controllers.OrdersPlace(deps.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", controllers.PaymentsInitiate(deps.Orders, logg))
			r.Post("/{paymentId}/confirm", controllers.PaymentsConfirm(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin.String(), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUsersList(deps.Identity, logg))
			r.Patch("/{userId}/active", controllers.AdminUserSetActive(deps.Identity, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/{category}", controllers.AdminProductsList(deps.Catalog, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Catalog, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.Catalog, logg))
			r.Post("/{productId}/restore", controllers.AdminProductRestore(deps.Catalog, logg))
		})

		r.Get("/analytics", controllers.AdminAnalytics(deps.Orders, deps.Identity, deps.Catalog, logg))
	})

	return r
}
