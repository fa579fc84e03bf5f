package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry holds one store per cached operation kind.
type Registry struct {
	stores map[Kind]Store
}

// NewMemoryRegistry builds per-kind in-memory stores of the given capacity.
func NewMemoryRegistry(capacity int, now func() time.Time) *Registry {
	r := &Registry{stores: make(map[Kind]Store)}
	for _, k := range Kinds() {
		r.stores[k] = NewMemory(capacity, k.DefaultTTL(), now)
	}
	return r
}

// NewRedisRegistry builds per-kind stores sharing one Redis client.
func NewRedisRegistry(client redis.UniversalClient) *Registry {
	r := &Registry{stores: make(map[Kind]Store)}
	for _, k := range Kinds() {
		r.stores[k] = NewRedis(client, "career:cache:"+string(k)+":", k.DefaultTTL())
	}
	return r
}

// For returns the store for kind, or nil when the kind is not cached.
func (r *Registry) For(kind Kind) Store {
	if r == nil {
		return nil
	}
	return r.stores[kind]
}

// PurgeAll empties every store.
func (r *Registry) PurgeAll(ctx context.Context) {
	if r == nil {
		return
	}
	for _, s := range r.stores {
		s.Purge(ctx)
	}
}
