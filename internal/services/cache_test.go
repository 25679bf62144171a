package services

import (
	"testing"
	"time"
)

func TestResponseCache(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newCache := func(ttl time.Duration) (*ResponseCache, *time.Time) {
		current := base
		cache := NewResponseCache(ttl)
		cache.now = func() time.Time { return current }
		return cache, &current
	}

	t.Run("Get Missing", func(t *testing.T) {
		cache, _ := newCache(time.Minute)
		if _, ok := cache.Get("/tracks/1"); ok {
			t.Error("expected miss on empty cache")
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		cache, _ := newCache(time.Minute)
		cache.Set("/tracks/1", []byte("body"))

		body, ok := cache.Get("/tracks/1")
		if !ok {
			t.Fatal("expected hit")
		}
		if string(body) != "body" {
			t.Errorf("unexpected body %q", body)
		}
	})

	t.Run("TTL Expiry", func(t *testing.T) {
		cache, clock := newCache(time.Minute)
		cache.Set("/tracks/1", []byte("body"))

		*clock = base.Add(59 * time.Second)
		if _, ok := cache.Get("/tracks/1"); !ok {
			t.Error("expected hit before TTL")
		}

		*clock = base.Add(61 * time.Second)
		if _, ok := cache.Get("/tracks/1"); ok {
			t.Error("expected miss after TTL")
		}

		// Expired entry is evicted on access.
		if cache.Len() != 0 {
			t.Errorf("expected eviction, %d entries remain", cache.Len())
		}
	})

	t.Run("Purge", func(t *testing.T) {
		cache, _ := newCache(time.Minute)
		cache.Set("/a", []byte("1"))
		cache.Set("/b", []byte("2"))

		cache.Purge()
		if cache.Len() != 0 {
			t.Errorf("expected empty cache after purge, got %d entries", cache.Len())
		}
	})
}
