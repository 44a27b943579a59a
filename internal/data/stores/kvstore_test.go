package stores

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskbot/internal/core/kv"
	"github.com/hay-kot/taskbot/internal/data/db"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// newTestKVStore returns a store whose clock is advanced by the returned func.
func newTestKVStore(t *testing.T) (*KVStore, func(time.Duration)) {
	t.Helper()

	var mu sync.Mutex
	now := time.Date(2030, 12, 1, 9, 0, 0, 0, time.UTC)

	store := NewKVStore(newTestDB(t))
	store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	return store, func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}
}

func TestKVStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	type conversation struct {
		State    string `json:"state"`
		Selected int64  `json:"selected"`
	}

	require.NoError(t, store.Put(ctx, "conversation:42", conversation{State: "awaiting_comment", Selected: 7}, 0))

	var got conversation
	require.NoError(t, store.Get(ctx, "conversation:42", &got))
	assert.Equal(t, conversation{State: "awaiting_comment", Selected: 7}, got)
}

func TestKVStore_GetMissing(t *testing.T) {
	store, _ := newTestKVStore(t)

	var v string
	err := store.Get(context.Background(), "nope", &v)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	require.NoError(t, store.Put(ctx, "key", "first", 0))
	require.NoError(t, store.Put(ctx, "key", "second", 0))

	var v string
	require.NoError(t, store.Get(ctx, "key", &v))
	assert.Equal(t, "second", v)
}

func TestKVStore_KeysByPrefix(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	require.NoError(t, store.Put(ctx, "reminder:2", 1, 0))
	require.NoError(t, store.Put(ctx, "reminder:1", 1, 0))
	require.NoError(t, store.Put(ctx, "conversation:1", 1, 0))

	keys, err := store.Keys(ctx, "reminder:")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminder:1", "reminder:2"}, keys)

	all, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestKVStore_PutIfAbsent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	ok, err := store.PutIfAbsent(ctx, "reminder:1:7", "first", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.PutIfAbsent(ctx, "reminder:1:7", "second", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.PutIfAbsent(ctx, "permanent", "x", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.PutIfAbsent(ctx, "permanent", "y", 0)
	require.NoError(t, err)
	assert.False(t, ok, "entries without expiry are never reclaimed")
}

func TestKVStore_PutIfAbsentReclaimsExpired(t *testing.T) {
	ctx := context.Background()
	store, advance := newTestKVStore(t)

	require.NoError(t, store.Put(ctx, "claim", "old", time.Minute))
	advance(time.Minute)

	ok, err := store.PutIfAbsent(ctx, "claim", "new", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	var got string
	require.NoError(t, store.Get(ctx, "claim", &got))
	assert.Equal(t, "new", got)
}

func TestKVStore_PutIfAbsentSingleWinner(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.PutIfAbsent(ctx, "race", true, time.Hour)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestKVStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, advance := newTestKVStore(t)

	require.NoError(t, store.Put(ctx, "ephemeral", "gone", time.Hour))
	advance(59 * time.Minute)

	var v string
	require.NoError(t, store.Get(ctx, "ephemeral", &v))

	advance(time.Minute)
	assert.ErrorIs(t, store.Get(ctx, "ephemeral", &v), kv.ErrNotFound)

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKVStore_SweepExpired(t *testing.T) {
	ctx := context.Background()
	store, advance := newTestKVStore(t)

	require.NoError(t, store.Put(ctx, "permanent", "stays", 0))
	require.NoError(t, store.Put(ctx, "expired", "goes", time.Minute))
	require.NoError(t, store.Put(ctx, "later", "stays", time.Hour))
	advance(2 * time.Minute)

	n, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int
	require.NoError(t, store.db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_store").Scan(&count))
	assert.Equal(t, 2, count)
}
