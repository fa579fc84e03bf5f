package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript starts a window on the first hit and never shortens an
// existing one.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisStore shares counters between replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore constructs a RedisStore namespaced by prefix.
func NewRedisStore(client redis.UniversalClient, prefix string, now func() time.Time) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, prefix: prefix, now: now}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis incr %s: unexpected reply length %d", key, len(res))
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return int(res[0]), s.now().Add(ttl), nil
}
