package files

import (
	"container/list"
	"sync"
	"time"
)

type cacheKey struct {
	serverID int64
	path     string
}

type cacheEntry struct {
	key     cacheKey
	infos   []Info
	expires time.Time
}

// CacheMetrics observes listing cache activity. A nil CacheMetrics disables
// collection.
type CacheMetrics interface {
	RecordHit()
	RecordMiss()
	SetEntries(n int)
}

// Cache holds recent directory listings keyed by (server id, path). It is
// bounded by entry count with LRU eviction; entries also expire after ttl.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	order   *list.List
	entries map[cacheKey]*list.Element
	metrics CacheMetrics
}

// NewCache returns a cache. A non-positive max disables caching.
func NewCache(ttl time.Duration, max int) *Cache {
	return &Cache{
		ttl:     ttl,
		max:     max,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element),
	}
}

// SetMetrics installs m. Call before the cache is shared.
func (c *Cache) SetMetrics(m CacheMetrics) {
	c.metrics = m
}

// Get returns a cached listing if present and fresh.
func (c *Cache) Get(serverID int64, dir string) ([]Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[cacheKey{serverID, clean(dir)}]
	if !ok {
		c.observe(false)
		return nil, false
	}
	ce := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().After(ce.expires) {
		c.removeElement(el)
		c.observe(false)
		return nil, false
	}
	c.order.MoveToFront(el)
	c.observe(true)
	return append([]Info(nil), ce.infos...), true
}

// Put stores a listing.
func (c *Cache) Put(serverID int64, dir string, infos []Info) {
	if c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{serverID, clean(dir)}
	ce := &cacheEntry{key: key, infos: append([]Info(nil), infos...), expires: c.now().Add(c.ttl)}
	if el, ok := c.entries[key]; ok {
		el.Value = ce
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(ce)
	for c.order.Len() > c.max {
		c.removeElement(c.order.Back())
	}
	c.sizeChanged()
}

// Invalidate drops every cached listing of dir, for all servers.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir = clean(dir)
	for key, el := range c.entries {
		if key.path == dir {
			c.removeElement(el)
		}
	}
	c.sizeChanged()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.order.Init()
	clear(c.entries)
	c.sizeChanged()
	c.mu.Unlock()
}

// Len returns the number of cached listings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}

func (c *Cache) observe(hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.RecordHit()
	} else {
		c.metrics.RecordMiss()
	}
}

func (c *Cache) sizeChanged() {
	if c.metrics != nil {
		c.metrics.SetEntries(c.order.Len())
	}
}
