package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/storefront-dashboard/internal/platform/cache"
	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
)

const redisKeyPrefix = "dashboard:session:"

type redisSessionRepository struct {
	cache *cache.RedisCache
}

// NewRedisSessionRepository stores each session slot as its own key; redis TTLs do the sweeping.
func NewRedisSessionRepository(c *cache.RedisCache) SessionRepository {
	return &redisSessionRepository{cache: c}
}

func redisKey(sid, key string) string {
	return fmt.Sprintf("%s%s:%s", redisKeyPrefix, sid, key)
}

func (r *redisSessionRepository) Get(ctx context.Context, sid, key string) ([]byte, error) {
	val, err := r.cache.Get(ctx, redisKey(sid, key))
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error("RedisSessionRepository.Get: redis failed", err, "sid", sid, "key", key)
		return nil, err
	}
	return val, nil
}

func (r *redisSessionRepository) Set(ctx context.Context, sid, key string, value []byte, ttl time.Duration) error {
	if err := r.cache.Set(ctx, redisKey(sid, key), value, ttl); err != nil {
		logger.Error("RedisSessionRepository.Set: redis failed", err, "sid", sid, "key", key)
		return err
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, sid, key string) error {
	return r.cache.Delete(ctx, redisKey(sid, key))
}

func (r *redisSessionRepository) DeleteSession(ctx context.Context, sid string) error {
	return r.cache.DeleteByPattern(ctx, redisKeyPrefix+sid+":*")
}

func (r *redisSessionRepository) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
