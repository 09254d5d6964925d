package pagination

// Page-number pagination over in-memory listings. Pages are 1-based;
// an out-of-range page yields an empty slice, never an error.

const (
	DefaultPageSize = 8
	MaxPageSize     = 100
)

// Params is a normalized pagination window.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps raw query input into a valid window. Zero or negative
// values fall back to the defaults.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// Slice returns the items within the window.
func Slice[T any](items []T, p Params) []T {
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages reports how many pages the collection spans.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}
