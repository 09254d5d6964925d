package wishlist

import (
	"context"
	"strings"

	"github.com/aurelia-jewels/aurelia-backend/internal/cart"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// AddResult reports whether the add changed the wishlist; adding a
// duplicate is a no-op.
type AddResult struct {
	Added bool            `json:"added"`
	Items []types.Product `json:"items"`
}

// MoveResult carries both sides of a move-to-cart transition.
type MoveResult struct {
	Cart  cart.Cart       `json:"cart"`
	Items []types.Product `json:"items"`
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store   kvstore.Store
	Catalog catalog.Service
	Cart    cart.Service
	Logger  *logger.Logger
}

// Service exposes business rules for wishlist management.
type Service interface {
	Get(ctx context.Context, userID string) ([]types.Product, error)
	Add(ctx context.Context, userID, productID string) (AddResult, error)
	Remove(ctx context.Context, userID, productID string) ([]types.Product, error)
	Clear(ctx context.Context, userID string) error
	MoveToCart(ctx context.Context, userID, productID string) (MoveResult, error)
}

type service struct {
	store   kvstore.Store
	catalog catalog.Service
	cart    cart.Service
	logg    *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog service is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	return &service{
		store:   params.Store,
		catalog: params.Catalog,
		cart:    params.Cart,
		logg:    params.Logger,
	}, nil
}

// Get reloads the wishlist from the store on every call.
func (s *service) Get(ctx context.Context, userID string) ([]types.Product, error) {
	return s.load(ctx, userID)
}

// Add snapshots the product into the wishlist. Duplicates report
// added=false and leave the list untouched.
func (s *service) Add(ctx context.Context, userID, productID string) (AddResult, error) {
	if err := requireUser(userID); err != nil {
		return AddResult{}, err
	}
	if strings.TrimSpace(productID) == "" {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	items, err := s.load(ctx, userID)
	if err != nil {
		return AddResult{}, err
	}
	for _, existing := range items {
		if existing.ID == productID {
			return AddResult{Added: false, Items: items}, nil
		}
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return AddResult{}, err
	}

	items = append(items, product)
	if err := s.persist(ctx, userID, items); err != nil {
		return AddResult{}, err
	}
	return AddResult{Added: true, Items: items}, nil
}

// Remove drops the entry regardless of prior state.
func (s *service) Remove(ctx context.Context, userID, productID string) ([]types.Product, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	items, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, existing := range items {
		if existing.ID != productID {
			kept = append(kept, existing)
		}
	}

	if err := s.persist(ctx, userID, kept); err != nil {
		return nil, err
	}
	if kept == nil {
		kept = []types.Product{}
	}
	return kept, nil
}

// Clear empties the wishlist. Clearing an empty wishlist is a no-op.
func (s *service) Clear(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return s.store.Remove(ctx, kvstore.WishlistKey(userID))
}

// MoveToCart adds the wishlist snapshot to the cart and removes it from
// the wishlist in one service call. The snapshot keeps its original
// price even when the catalog copy changed.
func (s *service) MoveToCart(ctx context.Context, userID, productID string) (MoveResult, error) {
	if err := requireUser(userID); err != nil {
		return MoveResult{}, err
	}

	items, err := s.load(ctx, userID)
	if err != nil {
		return MoveResult{}, err
	}

	var snapshot *types.Product
	for i := range items {
		if items[i].ID == productID {
			snapshot = &items[i]
			break
		}
	}
	if snapshot == nil {
		return MoveResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not in wishlist")
	}

	updatedCart, err := s.cart.AddLine(ctx, userID, types.CartLineFromProduct(*snapshot, 1))
	if err != nil {
		return MoveResult{}, err
	}

	remaining, err := s.Remove(ctx, userID, productID)
	if err != nil {
		return MoveResult{}, err
	}

	return MoveResult{Cart: updatedCart, Items: remaining}, nil
}

func (s *service) load(ctx context.Context, userID string) ([]types.Product, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var items []types.Product
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.WishlistKey(userID), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []types.Product{}
	}
	return items, nil
}

func (s *service) persist(ctx context.Context, userID string, items []types.Product) error {
	return kvstore.SetJSON(ctx, s.store, kvstore.WishlistKey(userID), items)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
