// Package cache provides verdict caching for the service layer. Analysis is
// pure and fast, so caching is an optimization for hot URLs, not a
// correctness concern; every backend treats errors as cache misses.
package cache

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/config"
	"github.com/qrshield/engine/internal/engine"
)

// Store caches analysis results keyed by the normalized input URL.
type Store interface {
	Get(ctx context.Context, key string) (*engine.Result, bool)
	Set(ctx context.Context, key string, res *engine.Result)
	Close() error
}

// New builds the configured backend. Backend "none" returns a no-op store.
func New(cfg config.CacheConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.TTL), nil
	case "redis":
		password := ""
		if cfg.PasswordEnv != "" {
			password = os.Getenv(cfg.PasswordEnv)
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		})
		return NewRedisStore(client, cfg.TTL, logger), nil
	case "none":
		return nopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

type nopStore struct{}

func (nopStore) Get(context.Context, string) (*engine.Result, bool) { return nil, false }
func (nopStore) Set(context.Context, string, *engine.Result)        {}
func (nopStore) Close() error                                        { return nil }
