package cart

import (
	"context"
	"strings"

	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store   kvstore.Store
	Catalog catalog.Service
	Logger  *logger.Logger
}

// Service exposes business rules for cart management. Every operation
// requires an authenticated user; carts are partitioned per user id.
type Service interface {
	Get(ctx context.Context, userID string) (Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (Cart, error)
	AddLine(ctx context.Context, userID string, line types.CartLine) (Cart, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (Cart, error)
	Clear(ctx context.Context, userID string) error
}

type service struct {
	store   kvstore.Store
	catalog catalog.Service
	logg    *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog service is required")
	}
	return &service{
		store:   params.Store,
		catalog: params.Catalog,
		logg:    params.Logger,
	}, nil
}

// Get reloads the cart from the store on every call so a session switch
// always sees its own partition.
func (s *service) Get(ctx context.Context, userID string) (Cart, error) {
	lines, err := s.load(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	return buildCart(lines), nil
}

// AddItem snapshots the product at its current offer price and merges it
// into the cart. Adding an existing product accumulates quantity.
func (s *service) AddItem(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	if err := requireUser(userID); err != nil {
		return Cart{}, err
	}
	if strings.TrimSpace(productID) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	return s.AddLine(ctx, userID, types.CartLineFromProduct(product, quantity))
}

// AddLine merges an already-priced line into the cart. Used by add-to-cart
// and by wishlist moves, where the snapshot already exists.
func (s *service) AddLine(ctx context.Context, userID string, line types.CartLine) (Cart, error) {
	if err := requireUser(userID); err != nil {
		return Cart{}, err
	}
	if line.ProductID == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i, existing := range lines {
		if existing.ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}

	if err := s.persist(ctx, userID, lines); err != nil {
		return Cart{}, err
	}
	return buildCart(lines), nil
}

// SetQuantity replaces a line's quantity. Anything below one removes the
// line entirely.
func (s *service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	if err := requireUser(userID); err != nil {
		return Cart{}, err
	}
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, productID)
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	for i, existing := range lines {
		if existing.ProductID == productID {
			lines[i].Quantity = quantity
			if err := s.persist(ctx, userID, lines); err != nil {
				return Cart{}, err
			}
			return buildCart(lines), nil
		}
	}
	return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
}

// RemoveItem drops the line regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, productID string) (Cart, error) {
	if err := requireUser(userID); err != nil {
		return Cart{}, err
	}

	lines, err := s.load(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	kept := lines[:0]
	for _, existing := range lines {
		if existing.ProductID != productID {
			kept = append(kept, existing)
		}
	}

	if err := s.persist(ctx, userID, kept); err != nil {
		return Cart{}, err
	}
	return buildCart(kept), nil
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (s *service) Clear(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return s.store.Remove(ctx, kvstore.CartKey(userID))
}

func (s *service) load(ctx context.Context, userID string) ([]types.CartLine, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var lines []types.CartLine
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.CartKey(userID), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *service) persist(ctx context.Context, userID string, lines []types.CartLine) error {
	return kvstore.SetJSON(ctx, s.store, kvstore.CartKey(userID), lines)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
