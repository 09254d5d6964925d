package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

var (
	priceRangeLowCap = decimal.NewFromInt(500)
	priceRangeMidCap = decimal.NewFromInt(1000)
)

// ApplyFilters narrows and orders a product slice. Filtering happens
// before sorting; both are pure and leave the input untouched.
func ApplyFilters(products []types.Product, priceRange enums.PriceRange, sortOption enums.SortOption) []types.Product {
	out := make([]types.Product, 0, len(products))
	for _, p := range products {
		if matchesPriceRange(p.OfferPrice, priceRange) {
			out = append(out, p)
		}
	}
	sortProducts(out, sortOption)
	return out
}

// Price buckets partition on offer price: the low bucket is inclusive of
// its cap, the middle bucket is exclusive below and inclusive above.
func matchesPriceRange(price decimal.Decimal, priceRange enums.PriceRange) bool {
	switch priceRange {
	case enums.PriceRangeLow:
		return price.LessThanOrEqual(priceRangeLowCap)
	case enums.PriceRangeMid:
		return price.GreaterThan(priceRangeLowCap) && price.LessThanOrEqual(priceRangeMidCap)
	case enums.PriceRangeHigh:
		return price.GreaterThan(priceRangeMidCap)
	default:
		return true
	}
}

func sortProducts(products []types.Product, sortOption enums.SortOption) {
	switch sortOption {
	case enums.SortPriceLowHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].OfferPrice.LessThan(products[j].OfferPrice)
		})
	case enums.SortPriceHighLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].OfferPrice.GreaterThan(products[j].OfferPrice)
		})
	case enums.SortNameAZ:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	}
}

// matchesSearch reports a case-insensitive substring hit on name or description.
func matchesSearch(p types.Product, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
