package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/voting-service/internal/domain"
)

func newTestCache(t *testing.T) (*TallyCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTallyCache(client, time.Minute), mr
}

func TestTallyCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := []domain.TallyEntry{{Party: "Alpha", Count: 3}, {Party: "Beta", Count: 1}}
	if stored, err := c.Set(ctx, 0, want); err != nil || !stored {
		t.Fatalf("Set: stored=%v err=%v", stored, err)
	}
	got, ok, err := c.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestTallyCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	_, _ = c.Set(ctx, 0, []domain.TallyEntry{{Party: "Alpha", Count: 1}})
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestTallyCacheSkipsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	gen, err := c.Generation(ctx)
	if err != nil || gen != 0 {
		t.Fatalf("Generation = %d, %v", gen, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	stored, err := c.Set(ctx, gen, []domain.TallyEntry{{Party: "Alpha", Count: 0}})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if stored {
		t.Fatal("tally computed before an invalidation must not be cached")
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatal("expected miss after skipped write")
	}

	current, err := c.Generation(ctx)
	if err != nil || current != gen+1 {
		t.Fatalf("Generation = %d, %v; want %d", current, err, gen+1)
	}
	if stored, err := c.Set(ctx, current, []domain.TallyEntry{{Party: "Alpha", Count: 1}}); err != nil || !stored {
		t.Fatalf("Set at current generation: stored=%v err=%v", stored, err)
	}
}

func TestTallyCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	c := NewTallyCache(client, time.Minute)
	mr.Close()

	if _, _, err := c.Get(ctx); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestNilTallyCache(t *testing.T) {
	ctx := context.Background()
	var c *TallyCache
	if NewTallyCache(nil, time.Minute) != nil {
		t.Fatal("expected nil cache without client")
	}
	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatal("nil cache must miss without error")
	}
	if _, err := c.Set(ctx, 0, nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
}
