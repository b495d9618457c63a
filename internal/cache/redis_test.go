package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	item := &domain.SellableItem{
		ID:      "item-1",
		Title:   "Vintage Lamp",
		Price:   24.00,
		Barcode: "CNS-001",
	}

	itemJSON, _ := json.Marshal(item)
	mr.Set(cacheKey("CNS-001"), string(itemJSON))

	result, err := cache.Get(ctx, "CNS-001")
	require.NoError(t, err)
	assert.Equal(t, "item-1", result.ID)
	assert.Equal(t, 24.00, result.Price)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	err := mr.Set(cacheKey("CNS-001"), `{"id":"item-`)
	require.NoError(t, err)

	_, cacheErr := cache.Get(context.Background(), "CNS-001")
	require.ErrorContains(t, cacheErr, "unmarshal item failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	item := &domain.SellableItem{
		ID:      "item-2",
		Title:   "Teapot",
		Price:   12.50,
		Barcode: "CNS-002",
	}

	require.NoError(t, cache.Set(ctx, "CNS-002", item))

	data, err := mr.Get(cacheKey("CNS-002"))
	require.NoError(t, err)

	var stored domain.SellableItem
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Equal(t, "item-2", stored.ID)

	// TTL must be set so sold items eventually fall out on their own.
	assert.Greater(t, mr.TTL(cacheKey("CNS-002")).Seconds(), 0.0)
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	mr.Set(cacheKey("CNS-003"), `{"id":"item-3"}`)

	require.NoError(t, cache.Delete(ctx, "CNS-003"))
	assert.False(t, mr.Exists(cacheKey("CNS-003")))
}
