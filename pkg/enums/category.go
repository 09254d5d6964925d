package enums

import "fmt"

// Category identifies a catalog collection.
type Category string

const (
	CategoryRing      Category = "ring"
	CategoryNecklace  Category = "necklace"
	CategoryBracelets Category = "bracelets"
	CategoryOther     Category = "other"
)

var validCategories = []Category{
	CategoryRing,
	CategoryNecklace,
	CategoryBracelets,
	CategoryOther,
}

// AllCategories returns every known category in catalog order.
func AllCategories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}
