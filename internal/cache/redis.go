package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"career-backend/internal/shared/telemetry"
)

// Redis is a Store shared across replicas. Memory bounds come from the
// server's maxmemory policy rather than a local capacity.
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewRedis constructs a Redis-backed store namespaced by prefix.
func NewRedis(client redis.UniversalClient, prefix string, defaultTTL time.Duration) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Redis{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			telemetry.Warn("cache.redis_get_failed", map[string]any{"key": key, "err": err})
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		telemetry.Warn("cache.redis_set_failed", map[string]any{"key": key, "err": err})
	}
}

// Purge deletes every key under the store's prefix.
func (r *Redis) Purge(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 200 {
			r.del(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		telemetry.Warn("cache.redis_scan_failed", map[string]any{"prefix": r.prefix, "err": err})
	}
	if len(keys) > 0 {
		r.del(ctx, keys)
	}
}

func (r *Redis) del(ctx context.Context, keys []string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		telemetry.Warn("cache.redis_purge_failed", map[string]any{"prefix": r.prefix, "err": err})
	}
}

var _ Store = (*Redis)(nil)
