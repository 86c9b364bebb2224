package scrape

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached page stays usable.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	page    *Page
	addedAt time.Time
}

// Cache is an in-memory page cache with lazy TTL eviction. Entries expire
// once their age reaches the TTL; expired entries are removed on lookup.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	// now is swapped out by tests to control entry age.
	now func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached page for url if one exists and is still fresh.
func (c *Cache) Get(url string) (*Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.addedAt) >= c.ttl {
		delete(c.entries, url)
		return nil, false
	}

	return entry.page, true
}

// Put stores a page under url, replacing any existing entry.
func (c *Cache) Put(url string, page *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = cacheEntry{page: page, addedAt: c.now()}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
