package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryGetWithinTTL(t *testing.T) {
	clock := newClock()
	c := NewMemory(10, time.Hour, clock.Now)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	clock.now = clock.now.Add(time.Minute)

	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit at expiry boundary, got ok=%v value=%q", ok, got)
	}
}

func TestMemoryExpiredEntryIsEvicted(t *testing.T) {
	clock := newClock()
	c := NewMemory(10, time.Hour, clock.Now)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	clock.now = clock.now.Add(time.Minute + time.Nanosecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed, len=%d", c.Len())
	}
}

func TestMemoryDefaultTTL(t *testing.T) {
	clock := newClock()
	c := NewMemory(10, KindAnalysis.DefaultTTL(), clock.Now)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 0)
	clock.now = clock.now.Add(59 * time.Minute)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before default ttl")
	}
	clock.now = clock.now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after default ttl")
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemory(2, time.Hour, newClock().Now)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	// Touch "a" so "b" becomes the least recently used.
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected hit for a")
	}
	c.Set(ctx, "c", []byte("3"), 0)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected a retained")
	}
	if _, ok := c.Get(ctx, "c"); !ok {
		t.Fatalf("expected c retained")
	}
}

func TestMemoryOverwriteDoesNotEvict(t *testing.T) {
	c := NewMemory(2, time.Hour, newClock().Now)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	c.Set(ctx, "a", []byte("updated"), 0)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	got, _ := c.Get(ctx, "a")
	if string(got) != "updated" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
	// "a" was refreshed by the overwrite, so inserting "c" evicts "b".
	c.Set(ctx, "c", []byte("3"), 0)
	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b evicted")
	}
}

func TestMemoryPurge(t *testing.T) {
	c := NewMemory(2, time.Hour, nil)
	ctx := context.Background()
	c.Set(ctx, "a", []byte("1"), 0)
	c.Purge(ctx)
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after purge")
	}
}

func TestNilMemoryIsAlwaysMiss(t *testing.T) {
	var c *Memory
	c.Set(context.Background(), "a", []byte("1"), 0)
	if _, ok := c.Get(context.Background(), "a"); ok {
		t.Fatalf("expected miss from nil cache")
	}
}
