package enums

import "fmt"

// PriceRange is a catalog filter bucket keyed on offer price.
type PriceRange string

const (
	PriceRangeAll  PriceRange = "all"
	PriceRangeLow  PriceRange = "0-500"
	PriceRangeMid  PriceRange = "500-1000"
	PriceRangeHigh PriceRange = "1000+"
)

var validPriceRanges = []PriceRange{
	PriceRangeAll,
	PriceRangeLow,
	PriceRangeMid,
	PriceRangeHigh,
}

// String implements fmt.Stringer.
func (p PriceRange) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceRange.
func (p PriceRange) IsValid() bool {
	for _, candidate := range validPriceRanges {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceRange converts raw input into a PriceRange. Empty input
// means no filter.
func ParsePriceRange(value string) (PriceRange, error) {
	if value == "" {
		return PriceRangeAll, nil
	}
	for _, candidate := range validPriceRanges {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price range %q", value)
}
