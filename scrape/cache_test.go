package scrape

import (
	"testing"
	"time"
)

func TestCacheGetPut(t *testing.T) {
	cache := NewCache(5 * time.Minute)

	if _, ok := cache.Get("https://example.com"); ok {
		t.Fatal("Get() on empty cache should miss")
	}

	page := &Page{URL: "https://example.com", Title: "Example", Content: "Example\n\nhello"}
	cache.Put("https://example.com", page)

	got, ok := cache.Get("https://example.com")
	if !ok {
		t.Fatal("Get() should hit after Put()")
	}
	if got.Title != "Example" {
		t.Errorf("Title = %q, want %q", got.Title, "Example")
	}
}

func TestCacheExpiry(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base

	cache := NewCache(5 * time.Minute)
	cache.now = func() time.Time { return current }

	cache.Put("https://example.com", &Page{URL: "https://example.com"})

	// Just under the TTL the entry is still fresh.
	current = base.Add(5*time.Minute - time.Second)
	if _, ok := cache.Get("https://example.com"); !ok {
		t.Error("Get() should hit just under the TTL")
	}

	// At exactly the TTL the entry has expired.
	current = base.Add(5 * time.Minute)
	if _, ok := cache.Get("https://example.com"); ok {
		t.Error("Get() should miss once age reaches the TTL")
	}
}

func TestCacheLazyEviction(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base

	cache := NewCache(time.Minute)
	cache.now = func() time.Time { return current }

	cache.Put("https://a.example.com", &Page{URL: "https://a.example.com"})
	cache.Put("https://b.example.com", &Page{URL: "https://b.example.com"})

	current = base.Add(2 * time.Minute)

	// Expired entries linger until looked up.
	if got := cache.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2 before lookup", got)
	}

	if _, ok := cache.Get("https://a.example.com"); ok {
		t.Error("Get() should miss on expired entry")
	}
	if got := cache.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1 after expired lookup", got)
	}
}

func TestCachePutReplaces(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Put("https://example.com", &Page{Title: "First"})
	cache.Put("https://example.com", &Page{Title: "Second"})

	got, ok := cache.Get("https://example.com")
	if !ok {
		t.Fatal("Get() should hit")
	}
	if got.Title != "Second" {
		t.Errorf("Title = %q, want %q", got.Title, "Second")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Put("https://a.example.com", &Page{})
	cache.Put("https://b.example.com", &Page{})
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Clear()", cache.Len())
	}
	if _, ok := cache.Get("https://a.example.com"); ok {
		t.Error("Get() should miss after Clear()")
	}
}
