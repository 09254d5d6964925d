package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aurelia-jewels/aurelia-backend/internal/cart"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	"github.com/aurelia-jewels/aurelia-backend/internal/identity"
	"github.com/aurelia-jewels/aurelia-backend/internal/orders"
	"github.com/aurelia-jewels/aurelia-backend/internal/wishlist"
	pkgauth "github.com/aurelia-jewels/aurelia-backend/pkg/auth"
	"github.com/aurelia-jewels/aurelia-backend/pkg/config"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(ctx context.Context, category enums.Category, query catalog.ListQuery) (types.Page[types.Product], error) {
	return types.Page[types.Product]{Items: []types.Product{}}, nil
}

func (stubCatalogService) FetchCategory(ctx context.Context, category enums.Category) ([]types.Product, error) {
	return nil, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, productID string) (types.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) Search(ctx context.Context, query string) ([]types.Product, error) {
	return []types.Product{}, nil
}

func (stubCatalogService) ListAdmin(ctx context.Context, category enums.Category) ([]types.Product, error) {
	return nil, nil
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.ProductInput) (types.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, productID string, input catalog.ProductInput) (types.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) SoftDeleteProduct(ctx context.Context, productID string) error {
	panic("unimplemented")
}

func (stubCatalogService) RestoreProduct(ctx context.Context, productID string) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID string) (cart.Cart, error) {
	return cart.Cart{Items: []types.CartLine{}}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID, productID string, quantity int) (cart.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) AddLine(ctx context.Context, userID string, line types.CartLine) (cart.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (cart.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, productID string) (cart.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID string) error {
	panic("unimplemented")
}

type stubWishlistService struct{}

func (stubWishlistService) Get(ctx context.Context, userID string) ([]types.Product, error) {
	return []types.Product{}, nil
}

func (stubWishlistService) Add(ctx context.Context, userID, productID string) (wishlist.AddResult, error) {
	panic("unimplemented")
}

func (stubWishlistService) Remove(ctx context.Context, userID, productID string) ([]types.Product, error) {
	panic("unimplemented")
}

func (stubWishlistService) Clear(ctx context.Context, userID string) error {
	panic("unimplemented")
}

func (stubWishlistService) MoveToCart(ctx context.Context, userID, productID string) (wishlist.MoveResult, error) {
	panic("unimplemented")
}

type stubIdentityService struct{}

func (stubIdentityService) Register(ctx context.Context, input identity.RegisterInput) (identity.AuthResult, error) {
	panic("unimplemented")
}

func (stubIdentityService) Login(ctx context.Context, input identity.LoginInput) (identity.AuthResult, error) {
	panic("unimplemented")
}

func (stubIdentityService) Logout(ctx context.Context, accessID, userID string) error {
	panic("unimplemented")
}

func (stubIdentityService) Refresh(ctx context.Context, claims *pkgauth.AccessTokenClaims, refreshToken string) (identity.AuthResult, error) {
	panic("unimplemented")
}

func (stubIdentityService) Current(ctx context.Context, userID string) (types.UserSession, error) {
	return types.UserSession{UserID: userID}, nil
}

func (stubIdentityService) ListUsers(ctx context.Context) ([]types.User, error) {
	return []types.User{}, nil
}

func (stubIdentityService) SetActive(ctx context.Context, actorID, targetID string, active bool) (types.User, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) Place(ctx context.Context, sess types.UserSession, input orders.PlaceInput) (types.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) InitiatePayment(ctx context.Context, sess types.UserSession, input orders.PaymentInput) (orders.PaymentSummary, error) {
	panic("unimplemented")
}

func (stubOrdersService) ConfirmPayment(ctx context.Context, sess types.UserSession, paymentID string) (types.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListForUser(ctx context.Context, sess types.UserSession) ([]types.Order, error) {
	return []types.Order{}, nil
}

func (stubOrdersService) ListAll(ctx context.Context) ([]types.Order, error) {
	return []types.Order{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (types.Order, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Upstream: stubPinger{},
		Sessions: stubSessionManager{},
		Catalog:  stubCatalogService{},
		Cart:     stubCartService{},
		Wishlist: stubWishlistService{},
		Identity: stubIdentityService{},
		Orders:   stubOrdersService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.NewString(),
		Name:   "Test User",
		Email:  "user@example.com",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestCatalogRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/ring", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart fetch got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAnalyticsRouteReturnsReport(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/analytics?range=week", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for analytics got %d", resp.Code)
	}
}

func TestProductDetailAndSearchDoNotCollide(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search?q=emerald", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for search got %d", resp.Code)
	}
}

func TestHealthLiveIsAlwaysUp(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}
