package redis

import (
	"context"
	"errors"
	"time"

	"checkout-service/internal/config"

	goredis "github.com/redis/go-redis/v9"
)

// Cache keeps rendered response bodies under a key prefix for ttl.
type Cache struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewCache(client goredis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			config.GetLogger().WithField("key", key).Warnf("cache read failed: %v", err)
		}
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, c.prefix+key, body, c.ttl).Err(); err != nil {
		config.GetLogger().WithField("key", key).Warnf("cache write failed: %v", err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		config.GetLogger().WithField("keys", keys).Warnf("cache delete failed: %v", err)
	}
}
