package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/metrics"
	"github.com/aurelia-jewels/aurelia-backend/pkg/pagination"
	"github.com/aurelia-jewels/aurelia-backend/pkg/remote"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

// RemoteClient is the upstream surface the catalog needs.
type RemoteClient interface {
	List(ctx context.Context, collection string, query url.Values) ([]remote.Record, error)
	Create(ctx context.Context, collection string, body any) (remote.Record, error)
	Replace(ctx context.Context, collection, id string, body any) (remote.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Remote      RemoteClient
	Store       kvstore.Store
	Logger      *logger.Logger
	Metrics     *metrics.StorefrontMetrics
	PageSize    int
	SeedEnabled bool
}

// Service exposes catalog reads plus the admin product operations.
type Service interface {
	List(ctx context.Context, category enums.Category, query ListQuery) (types.Page[types.Product], error)
	FetchCategory(ctx context.Context, category enums.Category) ([]types.Product, error)
	GetProduct(ctx context.Context, productID string) (types.Product, error)
	Search(ctx context.Context, query string) ([]types.Product, error)

	ListAdmin(ctx context.Context, category enums.Category) ([]types.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (types.Product, error)
	UpdateProduct(ctx context.Context, productID string, input ProductInput) (types.Product, error)
	SoftDeleteProduct(ctx context.Context, productID string) error
	RestoreProduct(ctx context.Context, productID string) error
}

type service struct {
	remote      RemoteClient
	store       kvstore.Store
	logg        *logger.Logger
	metrics     *metrics.StorefrontMetrics
	pageSize    int
	seedEnabled bool
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote client is required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &service{
		remote:      params.Remote,
		store:       params.Store,
		logg:        params.Logger,
		metrics:     params.Metrics,
		pageSize:    pageSize,
		seedEnabled: params.SeedEnabled,
	}, nil
}

// List returns one page of purchasable products, filtered and sorted.
func (s *service) List(ctx context.Context, category enums.Category, query ListQuery) (types.Page[types.Product], error) {
	products, err := s.FetchCategory(ctx, category)
	if err != nil {
		return types.Page[types.Product]{}, err
	}

	filtered := ApplyFilters(products, query.PriceRange, query.Sort)

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	window := pagination.Normalize(query.Page, pageSize)

	return types.Page[types.Product]{
		Items:      pagination.Slice(filtered, window),
		Page:       window.Page,
		PageSize:   window.PageSize,
		TotalItems: int64(len(filtered)),
		TotalPages: pagination.TotalPages(len(filtered), window.PageSize),
	}, nil
}

// FetchCategory loads a category's purchasable products: upstream first,
// local cache on failure, built-in seed as the last resort.
func (s *service) FetchCategory(ctx context.Context, category enums.Category) ([]types.Product, error) {
	all, err := s.fetchAll(ctx, category)
	if err != nil {
		return nil, err
	}

	out := make([]types.Product, 0, len(all))
	for _, p := range all {
		if p.Purchasable() {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetProduct scans every category for a purchasable product with the id.
func (s *service) GetProduct(ctx context.Context, productID string) (types.Product, error) {
	product, err := s.findIncludingDeleted(ctx, productID)
	if err != nil {
		return types.Product{}, err
	}
	if !product.Purchasable() {
		return types.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// Search matches a case-insensitive substring over name and description
// across every category. Hidden products never surface.
func (s *service) Search(ctx context.Context, query string) ([]types.Product, error) {
	if strings.TrimSpace(query) == "" {
		return []types.Product{}, nil
	}

	var out []types.Product
	for _, category := range enums.AllCategories() {
		products, err := s.FetchCategory(ctx, category)
		if err != nil {
			continue
		}
		for _, p := range products {
			if matchesSearch(p, query) {
				out = append(out, p)
			}
		}
	}
	if out == nil {
		out = []types.Product{}
	}
	return out, nil
}

// ListAdmin returns the full category including soft-deleted and inactive
// products.
func (s *service) ListAdmin(ctx context.Context, category enums.Category) ([]types.Product, error) {
	return s.fetchAll(ctx, category)
}

// CreateProduct writes a new product to the local cache and mirrors it
// upstream best-effort.
func (s *service) CreateProduct(ctx context.Context, input ProductInput) (types.Product, error) {
	category, err := enums.ParseCategory(input.Category)
	if err != nil {
		return types.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	product := productFromInput(input, category)
	product.ID = uuid.NewString()

	products, err := s.fetchAll(ctx, category)
	if err != nil {
		return types.Product{}, err
	}
	products = append(products, product)
	if err := s.cacheCategory(ctx, category, products); err != nil {
		return types.Product{}, err
	}

	if _, err := s.remote.Create(ctx, category.String(), upstreamProduct(product)); err != nil {
		s.noteFallback(ctx, category.String(), "create", err)
	}
	return product, nil
}

// UpdateProduct applies the input in place. Changing the category moves
// the product between collections.
func (s *service) UpdateProduct(ctx context.Context, productID string, input ProductInput) (types.Product, error) {
	newCategory, err := enums.ParseCategory(input.Category)
	if err != nil {
		return types.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	existing, err := s.findIncludingDeleted(ctx, productID)
	if err != nil {
		return types.Product{}, err
	}

	updated := productFromInput(input, newCategory)
	updated.ID = existing.ID
	updated.Deleted = existing.Deleted
	updated.CreatedAt = existing.CreatedAt

	if existing.Category != newCategory {
		if err := s.removeFromCategory(ctx, existing.Category, productID); err != nil {
			return types.Product{}, err
		}
		products, err := s.fetchAll(ctx, newCategory)
		if err != nil {
			return types.Product{}, err
		}
		products = append(products, updated)
		if err := s.cacheCategory(ctx, newCategory, products); err != nil {
			return types.Product{}, err
		}
		if err := s.remote.Delete(ctx, existing.Category.String(), productID); err != nil {
			s.noteFallback(ctx, existing.Category.String(), "delete", err)
		}
		if _, err := s.remote.Create(ctx, newCategory.String(), upstreamProduct(updated)); err != nil {
			s.noteFallback(ctx, newCategory.String(), "create", err)
		}
		return updated, nil
	}

	if err := s.replaceInCategory(ctx, newCategory, updated); err != nil {
		return types.Product{}, err
	}
	if _, err := s.remote.Replace(ctx, newCategory.String(), productID, upstreamProduct(updated)); err != nil {
		s.noteFallback(ctx, newCategory.String(), "replace", err)
	}
	return updated, nil
}

// SoftDeleteProduct hides the product from customer reads but keeps the
// record so existing orders stay coherent.
func (s *service) SoftDeleteProduct(ctx context.Context, productID string) error {
	product, err := s.findIncludingDeleted(ctx, productID)
	if err != nil {
		return err
	}
	product.Deleted = true
	if err := s.replaceInCategory(ctx, product.Category, product); err != nil {
		return err
	}
	if err := s.remote.Delete(ctx, product.Category.String(), productID); err != nil {
		s.noteFallback(ctx, product.Category.String(), "delete", err)
	}
	return nil
}

// RestoreProduct reverses a soft delete.
func (s *service) RestoreProduct(ctx context.Context, productID string) error {
	product, err := s.findIncludingDeleted(ctx, productID)
	if err != nil {
		return err
	}
	product.Deleted = false
	if err := s.replaceInCategory(ctx, product.Category, product); err != nil {
		return err
	}
	if _, err := s.remote.Create(ctx, product.Category.String(), upstreamProduct(product)); err != nil {
		s.noteFallback(ctx, product.Category.String(), "create", err)
	}
	return nil
}

func (s *service) fetchAll(ctx context.Context, category enums.Category) ([]types.Product, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}

	records, err := s.remote.List(ctx, category.String(), nil)
	if err == nil {
		products := make([]types.Product, 0, len(records))
		for _, record := range records {
			products = append(products, types.NormalizeProduct(record, category))
		}
		merged := s.mergeLocalOnly(ctx, category, products)
		if err := s.cacheCategory(ctx, category, merged); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "caching category failed")
		}
		return merged, nil
	}
	s.noteFallback(ctx, category.String(), "list", err)

	var cached []types.Product
	found, err := kvstore.GetJSON(ctx, s.store, kvstore.ProductsKey(category), &cached)
	if err != nil {
		return nil, err
	}
	if found && len(cached) > 0 {
		return cached, nil
	}

	if !s.seedEnabled {
		return []types.Product{}, nil
	}
	seeded := seedProducts(category)
	if err := s.cacheCategory(ctx, category, seeded); err != nil {
		return nil, err
	}
	return seeded, nil
}

// mergeLocalOnly keeps locally created or locally modified products that
// the upstream does not know about. Local records win on id collision.
func (s *service) mergeLocalOnly(ctx context.Context, category enums.Category, fetched []types.Product) []types.Product {
	var cached []types.Product
	found, err := kvstore.GetJSON(ctx, s.store, kvstore.ProductsKey(category), &cached)
	if err != nil || !found {
		return fetched
	}

	byID := make(map[string]int, len(fetched))
	for i, p := range fetched {
		byID[p.ID] = i
	}
	for _, local := range cached {
		if idx, ok := byID[local.ID]; ok {
			if local.Deleted {
				fetched[idx] = local
			}
			continue
		}
		fetched = append(fetched, local)
	}
	return fetched
}

func (s *service) cacheCategory(ctx context.Context, category enums.Category, products []types.Product) error {
	return kvstore.SetJSON(ctx, s.store, kvstore.ProductsKey(category), products)
}

func (s *service) replaceInCategory(ctx context.Context, category enums.Category, product types.Product) error {
	products, err := s.fetchAll(ctx, category)
	if err != nil {
		return err
	}
	for i, p := range products {
		if p.ID == product.ID {
			products[i] = product
			return s.cacheCategory(ctx, category, products)
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) removeFromCategory(ctx context.Context, category enums.Category, productID string) error {
	products, err := s.fetchAll(ctx, category)
	if err != nil {
		return err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	return s.cacheCategory(ctx, category, kept)
}

func (s *service) findIncludingDeleted(ctx context.Context, productID string) (types.Product, error) {
	for _, category := range enums.AllCategories() {
		products, err := s.fetchAll(ctx, category)
		if err != nil {
			continue
		}
		for _, p := range products {
			if p.ID == productID {
				return p, nil
			}
		}
	}
	return types.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) noteFallback(ctx context.Context, collection, operation string, err error) {
	s.metrics.IncRemoteFallback(collection, operation)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"collection": collection,
			"operation":  operation,
			"error":      err.Error(),
		})
		s.logg.Warn(ctx, "upstream unavailable, using local store")
	}
}

func productFromInput(input ProductInput, category enums.Category) types.Product {
	p := types.Product{
		Name:          strings.TrimSpace(input.Name),
		Category:      category,
		Price:         input.Price,
		OfferPrice:    input.OfferPrice,
		OriginalPrice: input.OriginalPrice,
		Image:         strings.TrimSpace(input.Image),
		Description:   strings.TrimSpace(input.Description),
		Metal:         strings.TrimSpace(input.Metal),
		Stock:         input.Stock,
		Active:        true,
	}
	if input.Active != nil {
		p.Active = *input.Active
	}
	if p.OfferPrice.IsZero() {
		p.OfferPrice = p.Price
	}
	if p.OriginalPrice.IsZero() {
		p.OriginalPrice = p.Price
	}
	return p
}

func upstreamProduct(p types.Product) remote.Record {
	return remote.Record{
		"id":            p.ID,
		"name":          p.Name,
		"price":         p.Price,
		"offerPrice":    p.OfferPrice,
		"originalPrice": p.OriginalPrice,
		"image":         p.Image,
		"description":   p.Description,
		"metal":         p.Metal,
		"stock":         p.Stock,
		"active":        p.Active,
	}
}
