package catalog

import "sync"

// lookupCache memoizes remote resolutions for the process lifetime, keyed by
// the normalized identifier. It is bounded: when full, the oldest insertion is
// evicted. Stale entries are acceptable; this is a round-trip saver, not a
// consistency-critical store.
type lookupCache struct {
	mu      sync.Mutex
	entries map[string]Entry
	order   []string // insertion order for eviction
	max     int
}

func newLookupCache(max int) *lookupCache {
	if max <= 0 {
		max = 1024
	}
	return &lookupCache{
		entries: make(map[string]Entry),
		max:     max,
	}
}

func (c *lookupCache) get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *lookupCache) put(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = e
}

func (c *lookupCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
