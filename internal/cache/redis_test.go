package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		RedisAddress: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := []models.Post{
		{ID: 1, Role: models.RoleSponsor, Platform: models.PlatformYouTube, Interests: []string{"tech"}, PricePoint: 250},
		{ID: 2, Role: models.RoleSponsor, Platform: models.PlatformTwitch, Followers: 1000},
	}
	require.NoError(t, cache.Set(ctx, "posts:pool:sponsor", expected, time.Minute))

	var actual []models.Post
	found, err := cache.Get(ctx, "posts:pool:sponsor", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected[0].Interests, actual[0].Interests)
	assert.Equal(t, expected[1].Followers, actual[1].Followers)
	assert.Len(t, actual, 2)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out []models.Post
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, cache.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "a", "b"))
	require.NoError(t, cache.Invalidate(ctx))

	var out string
	found, err := cache.Get(ctx, "a", &out)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = cache.Get(ctx, "b", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	err := cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out []models.Post
	found, err := cache.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestSet_MarshalError(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Set(context.Background(), "bad", make(chan int), time.Minute)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		RedisAddress:     "127.0.0.1:1",
		RedisDialTimeout: 100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Ping(context.Background()))

	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
