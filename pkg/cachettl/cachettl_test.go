package cachettl

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	t.Parallel()

	cache := New[string, string](time.Minute, 0)
	cache.Set("render:curl", "curl --request GET")

	if got, ok := cache.Get("render:curl"); !ok || got != "curl --request GET" {
		t.Fatalf("expected cached render, ok=true; got value=%q, ok=%v", got, ok)
	}

	if _, ok := cache.Get("render:missing"); ok {
		t.Fatal("expected missing key to return ok=false")
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	t.Parallel()

	cache := New[string, string](0, 0)
	cache.SetWithTTL("k", "v", 20*time.Millisecond)

	if val, ok := cache.Get("k"); !ok || val != "v" {
		t.Fatalf("expected cached value before expiration, got %q, ok=%v", val, ok)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := cache.Get("k"); ok {
		t.Fatal("expected key to expire")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	cache := New[string, int](0, 0)
	cache.Set("pinned", 1)

	time.Sleep(15 * time.Millisecond)
	if _, ok := cache.Get("pinned"); !ok {
		t.Fatal("expected zero-TTL entry to stay")
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	t.Parallel()

	cache := New[string, int](25*time.Millisecond, 0)
	cache.Set("default", 7)

	if _, ok := cache.Get("default"); !ok {
		t.Fatal("expected key immediately after set")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := cache.Get("default"); ok {
		t.Fatal("expected default TTL expiration")
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	cache := New[string, int](time.Minute, 0)
	cache.Set("z", 1)

	if !cache.Delete("z") {
		t.Fatal("expected delete to return true")
	}
	if cache.Delete("z") {
		t.Fatal("expected delete on missing key to return false")
	}
	if _, ok := cache.Get("z"); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestCacheLen(t *testing.T) {
	t.Parallel()

	cache := New[string, int](time.Minute, 0)
	cache.Set("a", 1)
	cache.Set("b", 2)

	if got := cache.Len(); got != 2 {
		t.Fatalf("expected len 2, got %d", got)
	}
}

func TestCachePurgeExpired(t *testing.T) {
	t.Parallel()

	cache := New[string, int](time.Millisecond*10, 0)
	cache.Set("a", 1)
	cache.SetWithTTL("b", 2, time.Millisecond*5)

	time.Sleep(15 * time.Millisecond)
	removed := cache.PurgeExpired()
	if removed == 0 {
		t.Fatal("expected purge to remove entries")
	}
}

func TestCacheCleanupLoop(t *testing.T) {
	cache := New[string, int](time.Millisecond*5, time.Millisecond*5)
	cache.Set("loop", 9)

	// Len does not evict lazily, so reaching zero proves the sweep ran.
	deadline := time.Now().Add(500 * time.Millisecond)
	for cache.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := cache.Len(); got != 0 {
		t.Fatalf("expected background sweep to evict entry, len=%d", got)
	}

	cache.Close()
	cache.Close() // second close should be a no-op
}
