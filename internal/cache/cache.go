package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded in-memory cache with per-entry TTL and LRU eviction.
// Expiry is absolute from insertion and is not refreshed by reads; reads only
// bump recency for eviction ordering. Safe for concurrent use.
//
// Writers do not invalidate entries: a stale value lives at most one TTL
// window before the next read repopulates it from the backing store.
type Cache[V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	items map[string]*list.Element
	order *list.List // front = most recently used
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // zero means no expiry
}

// New constructs a cache holding at most max entries whose values expire
// ttl after insertion. ttl <= 0 disables expiry; max <= 0 falls back to 1.
func New[V any](max int, ttl time.Duration) *Cache[V] {
	if max <= 0 {
		max = 1
	}
	return &Cache[V]{
		ttl:   ttl,
		max:   max,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the cached value for key. An expired entry is removed and
// reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := el.Value.(*entry[V])
	if c.expired(ent, time.Now()) {
		c.remove(el)
		return zero, false
	}

	c.order.MoveToFront(el)
	return ent.value, true
}

// Set inserts or overwrites key with the cache's default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL inserts or overwrites key with an explicit TTL. At capacity the
// eviction scan walks from least recently used; the first expired entry it
// meets is evicted in preference to a live one.
func (c *Cache[V]) SetTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	if len(c.items) >= c.max {
		c.evict(now)
	}

	el := c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = el
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Purge empties the cache.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len reports the number of stored entries, expired ones included until a
// read or eviction scan touches them.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[V]) expired(ent *entry[V], now time.Time) bool {
	return !ent.expiresAt.IsZero() && ent.expiresAt.Before(now)
}

// evict frees one slot. Lazy expiry piggybacks on the scan: walking from the
// LRU end, the first expired entry found is removed; with none expired the
// least recently used entry goes.
func (c *Cache[V]) evict(now time.Time) {
	for el := c.order.Back(); el != nil; el = el.Prev() {
		if c.expired(el.Value.(*entry[V]), now) {
			c.remove(el)
			return
		}
	}

	if el := c.order.Back(); el != nil {
		c.remove(el)
	}
}

func (c *Cache[V]) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
