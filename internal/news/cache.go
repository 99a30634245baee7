// ABOUTME: Thread-safe TTL cache for per-source headline lists.
// ABOUTME: Wraps a HeadlineFetcher so repeated tool calls do not re-scrape every source.

package news

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// cacheEntry stores the headlines, their fetch time and list element for a key.
type cacheEntry struct {
	headlines []string
	timestamp time.Time
	element   *list.Element
}

// Cache provides a thread-safe, TTL-based, size-limited store of headline
// lists keyed by source. Uses a doubly-linked list to maintain insertion
// order for O(1) eviction.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   *list.List // keys in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// NewCache creates a headline cache with the specified TTL and maximum size.
// A background goroutine periodically removes expired entries until Close.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns a copy of the cached headlines for key if present and not expired.
func (c *Cache) Get(key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.timestamp) >= c.ttl {
		return nil, false
	}
	out := make([]string, len(entry.headlines))
	copy(out, entry.headlines)
	return out, true
}

// Put stores headlines under key. If the cache is at capacity, the oldest
// entry is evicted to make room.
func (c *Cache) Put(key string, headlines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]string, len(headlines))
	copy(stored, headlines)
	now := time.Now()

	if entry, exists := c.entries[key]; exists {
		entry.headlines = stored
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &cacheEntry{
		headlines: stored,
		timestamp: now,
		element:   elem,
	}
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache) cleanup() {
	interval := time.Minute
	if c.ttl > 0 && c.ttl < interval {
		interval = c.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries from the cache.
func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) >= c.ttl {
			c.order.Remove(entry.element)
			delete(c.entries, key)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}

// CachedFetcher serves headlines from a Cache and falls through to the next
// fetcher on a miss. Empty results are never cached so a failed source is
// retried on the next call.
type CachedFetcher struct {
	next     HeadlineFetcher
	cache    *Cache
	observer FetchObserver
}

// NewCachedFetcher wraps next with cache.
func NewCachedFetcher(next HeadlineFetcher, cache *Cache, observer FetchObserver) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, observer: observer}
}

// FetchHeadlines implements HeadlineFetcher.
func (f *CachedFetcher) FetchHeadlines(ctx context.Context, src Source) []string {
	key := cacheKey(src)
	if headlines, ok := f.cache.Get(key); ok {
		if f.observer != nil {
			f.observer.ObserveFetch(src.Name, OutcomeCached, 0)
		}
		return headlines
	}

	headlines := f.next.FetchHeadlines(ctx, src)
	if len(headlines) > 0 {
		f.cache.Put(key, headlines)
	}
	return headlines
}

func cacheKey(src Source) string {
	return src.Name + "\x00" + src.URL + "\x00" + src.Selector
}
