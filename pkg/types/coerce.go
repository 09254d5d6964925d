package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coercion helpers for ingesting loosely typed mock collection records.
// The upstream fixtures mix numbers, numeric strings, and booleans freely,
// so normalization funnels every field through these.

func CoerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func CoerceDecimal(value any) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
		return decimal.Zero
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.TrimPrefix(cleaned, "₹")
		if cleaned == "" {
			return decimal.Zero
		}
		if d, err := decimal.NewFromString(cleaned); err == nil {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func CoerceInt(value any, fallback int) int {
	switch v := value.(type) {
	case nil:
		return fallback
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		return fallback
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		return fallback
	default:
		return fallback
	}
}

func CoerceBool(value any, fallback bool) bool {
	switch v := value.(type) {
	case nil:
		return fallback
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return fallback
	case float64:
		return v != 0
	default:
		return fallback
	}
}

// CoerceTime accepts RFC3339 strings, epoch millis, and date-only strings.
// Unparseable input yields the zero time.
func CoerceTime(value any) time.Time {
	switch v := value.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return v
	case float64:
		if v <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(v)).UTC()
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return time.UnixMilli(n).UTC()
		}
		return time.Time{}
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02", "1/2/2006"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC()
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
