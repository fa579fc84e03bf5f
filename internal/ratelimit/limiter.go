// Package ratelimit bounds how many guarded operations an actor may perform
// per fixed window. Windows do not slide: a burst straddling a boundary can
// admit up to twice the limit across two adjacent windows.
package ratelimit

import (
	"context"
	"time"

	"career-backend/internal/shared/telemetry"
)

// Result reports the outcome of a Check. It is a value, never an error.
type Result struct {
	IsLimited    bool      `json:"isLimited"`
	CurrentUsage int       `json:"currentUsage"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetAt      time.Time `json:"resetAt"`
}

// RetryAfter returns how long until the window resets, relative to now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Store increments the counter for key inside a fixed window. When the
// stored window has expired (now > windowExpiresAt) it starts a new one
// with count 1.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, windowExpiresAt time.Time, err error)
}

// Limiter applies a fixed-window ceiling per actor.
type Limiter struct {
	name   string
	limit  int
	window time.Duration
	store  Store
	now    func() time.Time
}

// New constructs a Limiter. name namespaces the counters so several limiters
// can share one store.
func New(name string, limit int, window time.Duration, store Store, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = time.Minute
	}
	if store == nil {
		store = NewMemoryStore(now)
	}
	return &Limiter{name: name, limit: limit, window: window, store: store, now: now}
}

// Limit returns the configured ceiling.
func (l *Limiter) Limit() int {
	if l == nil {
		return 0
	}
	return l.limit
}

// Check records one request for actorID and reports whether it exceeds the
// ceiling. Store failures fail open.
func (l *Limiter) Check(ctx context.Context, actorID string) Result {
	if l == nil || l.limit <= 0 {
		return Result{}
	}
	count, resetAt, err := l.store.Incr(ctx, l.name+"|"+actorID, l.window)
	if err != nil {
		telemetry.Warn("ratelimit.store_failed", map[string]any{
			"limiter":  l.name,
			"actor_id": actorID,
			"err":      err,
		})
		return Result{Limit: l.limit, Remaining: l.limit, ResetAt: l.now().Add(l.window)}
	}
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		IsLimited:    count > l.limit,
		CurrentUsage: count,
		Limit:        l.limit,
		Remaining:    remaining,
		ResetAt:      resetAt,
	}
}
