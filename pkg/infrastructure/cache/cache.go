package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"statsboard-backend/config"
)

const keyPrefix = "statsboard"

// Cache stores rendered responses for a short time.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key scopes a request path to a tenant. Paths include the query so different
// date ranges never share an entry.
func Key(tenant string, path string) string {
	return strings.Join([]string{keyPrefix, tenant, path}, ":")
}

// NewFromConfig builds the cache selected by config.C.Cache.Backend.
func NewFromConfig() (Cache, error) {
	cfg := config.C.Cache
	ttl := time.Duration(cfg.TTLSeconds) * time.Second

	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.C.Redis.Addr,
			Password: config.C.Redis.Password,
			DB:       config.C.Redis.DB,
		})
		return NewRedisCache(client), nil
	case "memory", "":
		return NewMemoryCache(cfg.Size, ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
