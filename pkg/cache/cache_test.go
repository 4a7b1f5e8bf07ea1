package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iancarlosortega/gym-tracker/internal/testutil"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, cleanup := testutil.SetupMiniRedis(t)
	t.Cleanup(cleanup)
	client := testutil.NewTestRedisClient(t, mr)
	t.Cleanup(func() { client.Close() })
	return NewCache(client), mr
}

type testValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheSetGet(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "test:key", testValue{Name: "squat", Count: 3}, time.Minute))

	var got testValue
	require.NoError(t, cache.Get(ctx, "test:key", &got))
	assert.Equal(t, "squat", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestCacheGetMiss(t *testing.T) {
	cache, _ := setupCache(t)

	var got testValue
	err := cache.Get(context.Background(), "missing:key", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "test:key", testValue{Name: "squat"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got testValue
	err := cache.Get(ctx, "test:key", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheDelete(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "test:key", testValue{Name: "squat"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "test:key"))

	var got testValue
	assert.ErrorIs(t, cache.Get(ctx, "test:key", &got), ErrCacheMiss)

	// Deleting nothing is a no-op
	assert.NoError(t, cache.Delete(ctx))
}

func TestCacheDeletePattern(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "exercises:shared", testValue{Name: "a"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "exercises:other", testValue{Name: "b"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "ratelimit:counter", testValue{Name: "c"}, time.Minute))

	require.NoError(t, cache.DeletePattern(ctx, "exercises:*"))

	var got testValue
	assert.ErrorIs(t, cache.Get(ctx, "exercises:shared", &got), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "exercises:other", &got), ErrCacheMiss)
	assert.NoError(t, cache.Get(ctx, "ratelimit:counter", &got), "non-matching keys survive")
}

func TestGetOrSet(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	t.Run("miss runs the loader and caches", func(t *testing.T) {
		loads := 0
		var got testValue
		hit, err := cache.GetOrSet(ctx, "getorset:a", time.Minute, &got, func() (interface{}, error) {
			loads++
			return testValue{Name: "loaded", Count: 1}, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, "loaded", got.Name)
		assert.Equal(t, 1, loads)
	})

	t.Run("hit skips the loader", func(t *testing.T) {
		var first testValue
		_, err := cache.GetOrSet(ctx, "getorset:b", time.Minute, &first, func() (interface{}, error) {
			return testValue{Name: "loaded"}, nil
		})
		require.NoError(t, err)

		loads := 0
		var second testValue
		hit, err := cache.GetOrSet(ctx, "getorset:b", time.Minute, &second, func() (interface{}, error) {
			loads++
			return testValue{}, nil
		})
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "loaded", second.Name)
		assert.Equal(t, 0, loads)
	})

	t.Run("loader failure propagates", func(t *testing.T) {
		var got testValue
		_, err := cache.GetOrSet(ctx, "getorset:c", time.Minute, &got, func() (interface{}, error) {
			return nil, assert.AnError
		})
		assert.Error(t, err)
	})
}
