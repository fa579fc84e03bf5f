package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps counters in process memory. Counters are lost on
// restart and are not shared between replicas; use RedisStore for that.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*windowRecord
	now     func() time.Time
}

type windowRecord struct {
	count     int
	expiresAt time.Time
}

// NewMemoryStore constructs a MemoryStore. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{windows: make(map[string]*windowRecord), now: now}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.windows[key]
	if !ok || now.After(rec.expiresAt) {
		rec = &windowRecord{count: 1, expiresAt: now.Add(window)}
		s.windows[key] = rec
		return rec.count, rec.expiresAt, nil
	}
	rec.count++
	return rec.count, rec.expiresAt, nil
}

// Sweep drops windows that expired before now.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, rec := range s.windows {
		if now.After(rec.expiresAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}
