package kvstore

import (
	"context"
	"encoding/json"
)

// Store is the local persistence port. It is the authoritative copy of
// every per-user aggregate; the upstream mirror is best-effort on top.
type Store interface {
	// Get returns the stored value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove is idempotent; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists stored keys matching the prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON loads and decodes a stored value. A missing key or an
// undecodable value both report found=false so callers fall back to
// their empty default instead of failing the request.
func GetJSON(ctx context.Context, store Store, key string, target any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes and stores a value.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}
