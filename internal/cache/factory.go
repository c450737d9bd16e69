package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/reco-service/internal/config"
)

// New builds the backend selected in configuration. The returned close function releases
// connections or background goroutines and is never nil.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, func(), error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return Nop{}, func() {}, nil
	case config.CacheLocal:
		c := NewLocal(cfg.TTL, cfg.Capacity)
		c.Start()
		return c, c.Stop, nil
	case config.CacheRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		c := NewRedis(client, cfg.TTL)
		if err := c.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return c, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
