package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient connects to RENTAL_TEST_REDIS_ADDR, skipping when unset.
func testClient(t *testing.T) *redis.Client {
	addr := os.Getenv("RENTAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RENTAL_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		_ = client.Close()
	})
	return client
}

func TestOrderKey(t *testing.T) {
	assert.Equal(t, "order:detail:42", orderKey(42))
}

func TestOrderCache(t *testing.T) {
	ctx := context.Background()
	cache := NewOrderCache(testClient(t))

	got, err := cache.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got, "miss is not an error")

	require.NoError(t, cache.SetOrder(ctx, 1, `{"id":1}`, time.Minute))
	got, err = cache.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, got)

	require.NoError(t, cache.DeleteOrder(ctx, 1))
	got, err = cache.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist(testClient(t))

	revoked, err := bl.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "expired", 0))
	revoked, err = bl.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "tok", time.Minute))
	revoked, err = bl.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}
