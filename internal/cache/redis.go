package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/engine"
)

const redisKeyPrefix = "qrshield:verdict:"

// RedisStore caches results in Redis as JSON with a TTL. Redis failures are
// logged and treated as misses so the analyze path never depends on the
// cache being up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore wraps a redis client as a verdict cache.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// Get fetches and decodes a cached result.
func (r *RedisStore) Get(ctx context.Context, key string) (*engine.Result, bool) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis get failed", zap.Error(err))
		}
		return nil, false
	}
	var res engine.Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.logger.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

// Set encodes and stores a result with the configured TTL.
func (r *RedisStore) Set(ctx context.Context, key string, res *engine.Result) {
	if res == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.Error(err))
	}
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
