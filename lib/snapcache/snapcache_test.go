package snapcache

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, ttl)
}

func TestPutGet(t *testing.T) {
	cache := newTestCache(t, time.Hour)
	ctx := context.Background()

	err := cache.Put(ctx, "run-1", Entry{
		Position: 3,
		Display:  "Alpha",
		Html:     "<div>Alpha</div>",
	})
	require.NoError(t, err)

	entry, err := cache.Get(ctx, "run-1", 3)
	require.NoError(t, err)
	require.Equal(t, "Alpha", entry.Display)
	require.Equal(t, "<div>Alpha</div>", entry.Html)

	_, err = cache.Get(ctx, "run-1", 4)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = cache.Get(ctx, "run-2", 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExpiry(t *testing.T) {
	cache := newTestCache(t, -time.Second)
	ctx := context.Background()

	err := cache.Put(ctx, "run-1", Entry{Position: 0, Html: "<div/>"})
	require.NoError(t, err)

	_, err = cache.Get(ctx, "run-1", 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCaptureOrder(t *testing.T) {
	cache := newTestCache(t, time.Hour)
	ctx := context.Background()

	// inserted out of order, listed by position
	for _, pos := range []int{12, 0, 5} {
		err := cache.Put(ctx, "run-1", Entry{Position: pos, Display: "entry"})
		require.NoError(t, err)
	}
	err := cache.Put(ctx, "other-run", Entry{Position: 1})
	require.NoError(t, err)

	entries, err := cache.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 0, entries[0].Position)
	require.Equal(t, 5, entries[1].Position)
	require.Equal(t, 12, entries[2].Position)
}
