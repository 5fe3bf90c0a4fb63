package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"jackpot/events"
	"jackpot/models"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// PoolStateCacheKey is the redis key holding the cached pool state
const PoolStateCacheKey = "jackpot:pool_state"

// PoolStateGenerationKey counts invalidations of the cached pool state
const PoolStateGenerationKey = "jackpot:pool_state:gen"

var errStaleGeneration = errors.New("pool state cache generation moved")

// RedisStateCache caches the pool state projection in redis
type RedisStateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStateCache creates a cache with entries expiring after ttl
func NewRedisStateCache(rdb *redis.Client, ttl time.Duration) *RedisStateCache {
	return &RedisStateCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached state (nil on a miss) and the current generation
func (c *RedisStateCache) Get(ctx context.Context) (*models.PoolState, int64, error) {
	vals, err := c.rdb.MGet(ctx, PoolStateGenerationKey, PoolStateCacheKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read pool state cache: %w", err)
	}

	var generation int64
	if raw, ok := vals[0].(string); ok {
		generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode pool state cache generation: %w", err)
		}
	}

	raw, ok := vals[1].(string)
	if !ok {
		return nil, generation, nil
	}

	var state models.PoolState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, 0, fmt.Errorf("failed to decode pool state cache: %w", err)
	}
	return &state, generation, nil
}

// Set stores the state with the configured TTL, unless the cache was
// invalidated after generation was read. A skipped write is not an error.
func (c *RedisStateCache) Set(ctx context.Context, generation int64, state *models.PoolState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode pool state: %w", err)
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, PoolStateGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, PoolStateCacheKey, b, c.ttl)
			return nil
		})
		return err
	}, PoolStateGenerationKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		log.WithField("generation", generation).Debug("Skipped stale pool state cache write")
		return nil
	default:
		return fmt.Errorf("failed to write pool state cache: %w", err)
	}
}

// Invalidate removes the cached state and bumps the generation so that
// in-flight writers holding an older generation drop their write
func (c *RedisStateCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, PoolStateGenerationKey)
		pipe.Del(ctx, PoolStateCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate pool state cache: %w", err)
	}
	return nil
}

// HandleWagerSettled drops the cached state once a settlement has committed
func (c *RedisStateCache) HandleWagerSettled(ctx context.Context, event events.Event) {
	if _, ok := event.(events.WagerSettledEvent); !ok {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate pool state cache")
	}
}
