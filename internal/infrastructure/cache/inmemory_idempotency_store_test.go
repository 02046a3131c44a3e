package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_TryAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		acquired, err := store.TryAcquire(ctx, "order:place:u1:req-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)

		acquired, err = store.TryAcquire(ctx, "order:place:u1:req-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, acquired)
	})

	t.Run("different keys do not collide", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		acquired, err := store.TryAcquire(ctx, "key-a", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)

		acquired, err = store.TryAcquire(ctx, "key-b", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("an expired claim can be re-acquired", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		acquired, err := store.TryAcquire(ctx, "key", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, acquired)

		time.Sleep(20 * time.Millisecond)

		acquired, err = store.TryAcquire(ctx, "key", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	acquired, err := store.TryAcquire(ctx, "key", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, store.Release(ctx, "key"))

	acquired, err = store.TryAcquire(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	_, err := store.TryAcquire(ctx, "stale", time.Millisecond)
	require.NoError(t, err)
	_, err = store.TryAcquire(ctx, "fresh", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, store.Size())

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	// A second close must not panic on the already-closed channel
	require.NoError(t, store.Close())
}
