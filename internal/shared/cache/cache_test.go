package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v" {
		t.Fatalf("expected hit, got %q %v %v", val, ok, err)
	}

	val[0] = 'x'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "v" {
		t.Fatalf("cached value must not alias callers")
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(365 * 24 * time.Hour)
	if val, ok, err := c.Get(ctx, "k"); err != nil || !ok || string(val) != "v" {
		t.Fatalf("expected entry without expiry, got %q %v %v", val, ok, err)
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(nil)
	c.maxEntries = 2
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if _, ok, _ := c.Get(ctx, "c"); !ok {
		t.Fatalf("latest entry must survive eviction")
	}
	if len(c.entries) > 2 {
		t.Fatalf("expected at most 2 entries, got %d", len(c.entries))
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := DialRedis(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer rdb.Close()

	c := NewRedisCache(rdb, "consult:test:")
	key := "roundtrip-" + time.Now().Format("150405.000000")
	if _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []byte(`{"ok":true}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(val) != `{"ok":true}` {
		t.Fatalf("expected hit, got %q %v %v", val, ok, err)
	}
}

func TestDialRedisRejectsBadURL(t *testing.T) {
	if _, err := DialRedis(context.Background(), "http://not-redis"); err == nil {
		t.Fatalf("expected parse error")
	}
}
