package wishlist

import (
	"context"
	"net/url"
	"testing"

	"github.com/aurelia-jewels/aurelia-backend/internal/cart"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/remote"
)

type stubRemote struct {
	collections map[string][]remote.Record
}

func (s *stubRemote) List(_ context.Context, collection string, _ url.Values) ([]remote.Record, error) {
	return s.collections[collection], nil
}

func (s *stubRemote) Create(_ context.Context, _ string, body any) (remote.Record, error) {
	record, _ := body.(remote.Record)
	return record, nil
}

func (s *stubRemote) Replace(_ context.Context, _, _ string, body any) (remote.Record, error) {
	record, _ := body.(remote.Record)
	return record, nil
}

func (s *stubRemote) Delete(_ context.Context, _, _ string) error {
	return nil
}

func newTestService(t *testing.T) (Service, cart.Service) {
	t.Helper()

	upstream := &stubRemote{collections: map[string][]remote.Record{
		"ring": {
			{"id": "r1", "name": "Aurora Band", "price": 500.0, "offerPrice": 450.0},
			{"id": "r2", "name": "Halo Ring", "price": 900.0, "offerPrice": 790.0},
		},
	}}
	store := kvstore.NewMemory()

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Remote: upstream, Store: store})
	if err != nil {
		t.Fatalf("catalog.NewService: %v", err)
	}
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: store, Catalog: catalogSvc})
	if err != nil {
		t.Fatalf("cart.NewService: %v", err)
	}
	svc, err := NewService(ServiceParams{Store: store, Catalog: catalogSvc, Cart: cartSvc})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, cartSvc
}

func TestAddDuplicateIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !first.Added || len(first.Items) != 1 {
		t.Fatalf("first add: %+v", first)
	}

	second, err := svc.Add(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if second.Added {
		t.Error("duplicate add reported added=true")
	}
	if len(second.Items) != 1 {
		t.Errorf("duplicate add changed the list: %v", second.Items)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Remove(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items, err := svc.Remove(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Remove twice: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty wishlist, got %v", items)
	}
}

func TestMoveToCartTransfersSnapshot(t *testing.T) {
	svc, cartSvc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	result, err := svc.MoveToCart(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("MoveToCart: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("wishlist still holds the product: %v", result.Items)
	}
	if len(result.Cart.Items) != 1 || result.Cart.Items[0].ProductID != "r1" {
		t.Errorf("cart missing moved line: %v", result.Cart.Items)
	}

	reloaded, err := cartSvc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("cart Get: %v", err)
	}
	if len(reloaded.Items) != 1 || reloaded.Items[0].Quantity != 1 {
		t.Errorf("persisted cart wrong: %v", reloaded.Items)
	}
}

func TestMoveToCartMissingProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MoveToCart(context.Background(), "u1", "r9")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestWishlistRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "", "r1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestWishlistsArePartitionedPerUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", "r1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, "bob", "r2"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	alice, err := svc.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(alice) != 1 || alice[0].ID != "r1" {
		t.Errorf("alice wishlist leaked: %v", alice)
	}
}
