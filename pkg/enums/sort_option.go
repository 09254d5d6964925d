package enums

import "fmt"

// SortOption orders a catalog listing.
type SortOption string

const (
	SortDefault      SortOption = "default"
	SortPriceLowHigh SortOption = "price-low-high"
	SortPriceHighLow SortOption = "price-high-low"
	SortNameAZ       SortOption = "name-az"
)

var validSortOptions = []SortOption{
	SortDefault,
	SortPriceLowHigh,
	SortPriceHighLow,
	SortNameAZ,
}

// String implements fmt.Stringer.
func (s SortOption) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortOption.
func (s SortOption) IsValid() bool {
	for _, candidate := range validSortOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOption converts raw input into a SortOption. Empty input
// means insertion order.
func ParseSortOption(value string) (SortOption, error) {
	if value == "" {
		return SortDefault, nil
	}
	for _, candidate := range validSortOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort option %q", value)
}
