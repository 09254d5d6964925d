package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia-backend/pkg/db"
)

func setupKVTestDB(t *testing.T) *GormStore {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS kv_entries (
  key TEXT PRIMARY KEY,
  value BLOB,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)

	return NewGormStore(db.NewWithConn(conn))
}

func TestGormStoreRoundTrip(t *testing.T) {
	store := setupKVTestDB(t)
	ctx := context.Background()

	raw, err := store.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, store.Set(ctx, "cart:u1", []byte(`[{"product_id":"r1"}]`)))

	raw, err = store.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.Equal(t, `[{"product_id":"r1"}]`, string(raw))
}

func TestGormStoreSetOverwrites(t *testing.T) {
	store := setupKVTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", []byte(`[]`)))
	require.NoError(t, store.Set(ctx, "users", []byte(`[{"id":"u1"}]`)))

	raw, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"u1"}]`, string(raw))
}

func TestGormStoreRemoveIdempotent(t *testing.T) {
	store := setupKVTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "wishlist:u1", []byte(`[]`)))
	require.NoError(t, store.Remove(ctx, "wishlist:u1"))
	require.NoError(t, store.Remove(ctx, "wishlist:u1"))

	raw, err := store.Get(ctx, "wishlist:u1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestGormStoreKeysByPrefix(t *testing.T) {
	store := setupKVTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "orders:u1", []byte(`[]`)))
	require.NoError(t, store.Set(ctx, "orders:u2", []byte(`[]`)))
	require.NoError(t, store.Set(ctx, "cart:u1", []byte(`[]`)))

	keys, err := store.Keys(ctx, "orders:")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders:u1", "orders:u2"}, keys)
}

func TestGetJSONSoftFailsOnCorruptValue(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:u1", []byte(`{not json`)))

	var lines []map[string]any
	found, err := GetJSON(ctx, store, "cart:u1", &lines)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, lines)
}

func TestSetJSONGetJSONRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	in := map[string]string{"user_id": "u1", "email": "a@b.c"}
	require.NoError(t, SetJSON(ctx, store, "session:u1", in))

	var out map[string]string
	found, err := GetJSON(ctx, store, "session:u1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}
