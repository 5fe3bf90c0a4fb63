package infrastructure

import (
	"context"
	"testing"
	"time"

	"jackpot/events"
	"jackpot/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	endpoint := startContainer(t, "redis:7-alpine", "6379/tcp", nil,
		wait.ForLog("Ready to accept connections"))

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestRedisStateCache(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	state := &models.PoolState{
		PoolAmount: 1450,
		RecentWins: []models.RecentWin{
			{Player: "Ada", Amount: 200, Roll: 77, CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
			{Player: "Anonymous", Amount: 610, Roll: 100, IsJackpot: true, CreatedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
		},
	}

	t.Run("miss returns nil", func(t *testing.T) {
		cache := NewRedisStateCache(rdb, time.Minute)
		require.NoError(t, cache.Invalidate(ctx))

		got, _, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		cache := NewRedisStateCache(rdb, time.Minute)
		_, gen, err := cache.Get(ctx)
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, gen, state))

		got, gotGen, err := cache.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, gen, gotGen)
		assert.Equal(t, int64(1450), got.PoolAmount)
		require.Len(t, got.RecentWins, 2)
		assert.True(t, got.RecentWins[1].IsJackpot)
		assert.True(t, got.RecentWins[0].CreatedAt.Equal(state.RecentWins[0].CreatedAt))

		ttl, err := rdb.TTL(ctx, PoolStateCacheKey).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("settlement event invalidates", func(t *testing.T) {
		cache := NewRedisStateCache(rdb, time.Minute)
		_, gen, err := cache.Get(ctx)
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, gen, state))

		cache.HandleWagerSettled(ctx, events.AllowanceClaimedEvent{})
		got, _, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got, "unrelated events keep the entry")

		cache.HandleWagerSettled(ctx, events.WagerSettledEvent{BetID: 1})
		got, newGen, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Greater(t, newGen, gen)
	})

	t.Run("write from before an invalidation is dropped", func(t *testing.T) {
		cache := NewRedisStateCache(rdb, time.Minute)
		require.NoError(t, cache.Invalidate(ctx))

		// A reader misses, then a settlement commits before it writes back.
		_, staleGen, err := cache.Get(ctx)
		require.NoError(t, err)
		cache.HandleWagerSettled(ctx, events.WagerSettledEvent{BetID: 2})

		require.NoError(t, cache.Set(ctx, staleGen, state))
		got, _, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got, "stale state must not be cached")

		exists, err := rdb.Exists(ctx, PoolStateCacheKey).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("corrupt entry is an error", func(t *testing.T) {
		cache := NewRedisStateCache(rdb, time.Minute)
		require.NoError(t, rdb.Set(ctx, PoolStateCacheKey, "not json", time.Minute).Err())

		_, _, err := cache.Get(ctx)
		assert.Error(t, err)
	})
}
