package memory

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	size      int
}

// LRUTTL is a threadsafe LRU cache with per-entry TTL and an optional byte budget.
type LRUTTL[K comparable, V any] struct {
	mu         sync.Mutex
	ll         *list.List
	items      map[K]*list.Element
	maxEntries int
	maxBytes   int
	totalBytes int
	ttl        time.Duration
	now        func() time.Time
	onEvict    func(K, V)
}

// Option tweaks a new cache.
type Option[K comparable, V any] func(*LRUTTL[K, V])

// WithClock replaces time.Now, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *LRUTTL[K, V]) { c.now = now }
}

// WithEvict is called for entries dropped by capacity or expiry, not by Delete.
func WithEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *LRUTTL[K, V]) { c.onEvict = fn }
}

func NewLRUTTL[K comparable, V any](maxEntries int, maxBytes int, ttl time.Duration, opts ...Option[K, V]) *LRUTTL[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	c := &LRUTTL[K, V]{
		ll:         list.New(),
		items:      make(map[K]*list.Element),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *LRUTTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	ele, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	ent := ele.Value.(*entry[K, V])
	if c.now().After(ent.expiresAt) {
		c.removeElement(ele)
		c.mu.Unlock()
		c.evicted([]*entry[K, V]{ent})
		return zero, false
	}
	c.ll.MoveToFront(ele)
	c.mu.Unlock()
	return ent.value, true
}

func (c *LRUTTL[K, V]) Set(key K, value V, sizeBytes int) {
	if c == nil {
		return
	}
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	c.mu.Lock()
	if ele, ok := c.items[key]; ok {
		ent := ele.Value.(*entry[K, V])
		c.totalBytes += sizeBytes - ent.size
		ent.value = value
		ent.size = sizeBytes
		ent.expiresAt = c.now().Add(c.ttl)
		c.ll.MoveToFront(ele)
	} else {
		ent := &entry[K, V]{key: key, value: value, size: sizeBytes, expiresAt: c.now().Add(c.ttl)}
		c.items[key] = c.ll.PushFront(ent)
		c.totalBytes += sizeBytes
	}
	dropped := c.evictLocked()
	c.mu.Unlock()
	c.evicted(dropped)
}

func (c *LRUTTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[key]; ok {
		c.removeElement(ele)
	}
}

func (c *LRUTTL[K, V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.items = make(map[K]*list.Element)
	c.totalBytes = 0
}

// Len counts stored entries, expired ones included until they are touched.
func (c *LRUTTL[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRUTTL[K, V]) evictLocked() []*entry[K, V] {
	var dropped []*entry[K, V]
	for c.ll.Len() > 0 {
		if c.ll.Len() <= c.maxEntries && (c.maxBytes <= 0 || c.totalBytes <= c.maxBytes) {
			break
		}
		back := c.ll.Back()
		dropped = append(dropped, back.Value.(*entry[K, V]))
		c.removeElement(back)
	}
	return dropped
}

func (c *LRUTTL[K, V]) evicted(ents []*entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range ents {
		c.onEvict(e.key, e.value)
	}
}

func (c *LRUTTL[K, V]) removeElement(ele *list.Element) {
	if ele == nil {
		return
	}
	c.ll.Remove(ele)
	ent := ele.Value.(*entry[K, V])
	delete(c.items, ent.key)
	c.totalBytes -= ent.size
	if c.totalBytes < 0 {
		c.totalBytes = 0
	}
}
