package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("research", map[string]string{"a": "1", "b": "2"})
	b := Key("research", map[string]string{"b": "2", "a": "1"})
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if a != "research::a:1|b:2" {
		t.Fatalf("unexpected key format: %q", a)
	}
}

func TestKeyWithoutParams(t *testing.T) {
	if got := Key("analysis", nil); got != "analysis::" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestKindDefaultTTLs(t *testing.T) {
	cases := map[Kind]time.Duration{
		KindResearch:           24 * time.Hour,
		KindAnalysis:           time.Hour,
		KindJobExtraction:      24 * time.Hour,
		KindInterviewQuestions: 6 * time.Hour,
	}
	for kind, want := range cases {
		if got := kind.DefaultTTL(); got != want {
			t.Fatalf("%s: expected %s, got %s", kind, want, got)
		}
	}
}

func TestMemoryRegistryIsolatesKinds(t *testing.T) {
	reg := NewMemoryRegistry(4, nil)
	ctx := context.Background()

	reg.For(KindResearch).Set(ctx, "k", []byte("research"), 0)
	if _, ok := reg.For(KindAnalysis).Get(ctx, "k"); ok {
		t.Fatalf("expected analysis store to be independent")
	}
	if reg.For(Kind("cover_letter")) != nil {
		t.Fatalf("expected no store for uncached kind")
	}

	reg.PurgeAll(ctx)
	if _, ok := reg.For(KindResearch).Get(ctx, "k"); ok {
		t.Fatalf("expected miss after purge")
	}
}

func TestRedisUnavailableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "test:", time.Minute)
	ctx := context.Background()
	store.Set(ctx, "k", []byte("v"), 0)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss when redis is unreachable")
	}
}
