package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestCheckAllowsUpToLimitThenLimits(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	l := New("generation", 3, time.Minute, NewMemoryStore(clock.Now), clock.Now)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res := l.Check(ctx, "user-1")
		if res.IsLimited {
			t.Fatalf("call %d: expected not limited", i)
		}
		if res.CurrentUsage != i {
			t.Fatalf("call %d: expected usage %d, got %d", i, i, res.CurrentUsage)
		}
		if res.Remaining != 3-i {
			t.Fatalf("call %d: expected remaining %d, got %d", i, 3-i, res.Remaining)
		}
	}

	res := l.Check(ctx, "user-1")
	if !res.IsLimited {
		t.Fatalf("expected 4th call limited")
	}
	if res.Remaining != 0 || res.Limit != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCheckResetsAfterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	l := New("generation", 1, time.Minute, NewMemoryStore(clock.Now), clock.Now)
	ctx := context.Background()

	first := l.Check(ctx, "user-1")
	if first.IsLimited {
		t.Fatalf("expected first call allowed")
	}
	if !l.Check(ctx, "user-1").IsLimited {
		t.Fatalf("expected second call limited")
	}

	// Exactly at the boundary the window is still active.
	clock.now = first.ResetAt
	if !l.Check(ctx, "user-1").IsLimited {
		t.Fatalf("expected call at reset boundary to remain limited")
	}

	clock.now = first.ResetAt.Add(time.Millisecond)
	res := l.Check(ctx, "user-1")
	if res.IsLimited || res.CurrentUsage != 1 {
		t.Fatalf("expected fresh window, got %+v", res)
	}
}

func TestWindowIsFixedNotSliding(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	l := New("generation", 5, time.Minute, NewMemoryStore(clock.Now), clock.Now)
	ctx := context.Background()

	first := l.Check(ctx, "user-1")
	clock.now = clock.now.Add(50 * time.Second)
	later := l.Check(ctx, "user-1")
	if !later.ResetAt.Equal(first.ResetAt) {
		t.Fatalf("expected shared reset time, got %s vs %s", later.ResetAt, first.ResetAt)
	}
}

func TestActorsAreIndependent(t *testing.T) {
	l := New("generation", 1, time.Minute, nil, nil)
	ctx := context.Background()
	l.Check(ctx, "user-1")
	if l.Check(ctx, "user-2").IsLimited {
		t.Fatalf("expected user-2 unaffected by user-1")
	}
}

type failingStore struct{}

func (failingStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func TestStoreFailureFailsOpen(t *testing.T) {
	l := New("generation", 1, time.Minute, failingStore{}, nil)
	res := l.Check(context.Background(), "user-1")
	if res.IsLimited {
		t.Fatalf("expected fail-open result")
	}
	if res.Limit != 1 {
		t.Fatalf("expected limit reported, got %+v", res)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock.Now)
	_, _, _ = store.Incr(context.Background(), "a", time.Second)
	clock.now = clock.now.Add(2 * time.Second)
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected 1 expired window removed, got %d", removed)
	}
}
