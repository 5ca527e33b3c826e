// Package lrucache provides a fixed-capacity, in-memory key/value store
// with least-recently-used eviction and optional per-entry expiry.
//
// The cache is safe for concurrent use. Expiry is lazy: expired entries are
// removed when an accessor touches them, never by a background goroutine of
// the cache itself. Hosts that want eager reclamation can call Flush on a
// schedule.
package lrucache

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidMaxSize = errors.New("lrucache: max size must be at least 1")
	ErrInvalidTTL     = errors.New("lrucache: ttl must be greater than zero")
)

// Entry is a snapshot of a live cache entry, as returned by Entries.
type Entry[K comparable, V any] struct {
	Key        K
	Value      V
	CreatedAt  time.Time
	AccessedAt time.Time
}

type item[K comparable, V any] struct {
	key        K
	value      V
	createdAt  time.Time
	accessedAt time.Time
}

// Option configures optional cache behaviour.
type Option func(*options)

type options struct {
	ttl    time.Duration
	ttlSet bool
}

// WithTTL enables expiry: entries older than ttl (measured from their
// creation or last rewrite, not from reads) become invisible and are lazily
// deleted. A non-positive ttl is rejected by New.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
		o.ttlSet = true
	}
}

// Cache is a bounded key/value store. The recency list front holds the most
// recently used entry; eviction always takes the back.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration // 0 = entries never expire
	ll      *list.List
	index   map[K]*list.Element

	now func() time.Time
}

// New builds a cache holding at most maxSize entries. Configuration is
// validated here so that every runtime operation is total.
func New[K comparable, V any](maxSize int, opts ...Option) (*Cache[K, V], error) {
	if maxSize < 1 {
		return nil, ErrInvalidMaxSize
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttlSet && o.ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	return &Cache[K, V]{
		maxSize: maxSize,
		ttl:     o.ttl,
		ll:      list.New(),
		index:   make(map[K]*list.Element),
		now:     time.Now,
	}, nil
}

// MustNew is New for wiring code where the configuration is static.
func MustNew[K comparable, V any](maxSize int, opts ...Option) *Cache[K, V] {
	c, err := New[K, V](maxSize, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// expired is the single liveness predicate every accessor goes through.
// Age is measured against createdAt only; reads never extend an entry's life.
func (c *Cache[K, V]) expired(it *item[K, V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(it.createdAt) > c.ttl
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	it := el.Value.(*item[K, V])
	delete(c.index, it.key)
	c.ll.Remove(el)
}

// Get returns the live value for key, refreshing its recency. An expired
// entry is deleted on the spot and reported as a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}

	it := el.Value.(*item[K, V])
	if c.expired(it, c.now()) {
		c.removeElement(el)
		return zero, false
	}

	it.accessedAt = c.now()
	c.ll.MoveToFront(el)
	return it.value, true
}

// Set stores value under key. Rewriting an existing key refreshes the value
// and both timestamps in place and never evicts. A new key at capacity first
// evicts the least recently used entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.index[key]; ok {
		it := el.Value.(*item[K, V])
		it.value = value
		it.createdAt = now
		it.accessedAt = now
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.maxSize {
		if back := c.ll.Back(); back != nil {
			c.removeElement(back)
		}
	}

	el := c.ll.PushFront(&item[K, V]{
		key:        key,
		value:      value,
		createdAt:  now,
		accessedAt: now,
	})
	c.index[key] = el
}

// Has reports whether key holds a live entry. It shares Get's lazy-delete
// side effect but does not refresh recency, so probing never protects an
// entry from eviction.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return false
	}
	if c.expired(el.Value.(*item[K, V]), c.now()) {
		c.removeElement(el)
		return false
	}
	return true
}

// Delete removes key and reports whether an entry (live or expired) was
// present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.index = make(map[K]*list.Element)
}

// Len returns the number of stored entries. Entries past their ttl that no
// accessor has touched yet are still counted; Flush reconciles eagerly.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// MaxSize returns the configured capacity.
func (c *Cache[K, V]) MaxSize() int {
	return c.maxSize
}

// TTL returns the configured expiry, or 0 when entries never expire.
func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Keys lists the keys of all live entries, most recently used first,
// lazily deleting any expired entry the walk encounters.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.ll.Len())
	c.walkLive(func(it *item[K, V]) {
		keys = append(keys, it.key)
	})
	return keys
}

// Values lists the values of all live entries, most recently used first.
func (c *Cache[K, V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make([]V, 0, c.ll.Len())
	c.walkLive(func(it *item[K, V]) {
		values = append(values, it.value)
	})
	return values
}

// Entries snapshots all live entries, most recently used first.
func (c *Cache[K, V]) Entries() []Entry[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry[K, V], 0, c.ll.Len())
	c.walkLive(func(it *item[K, V]) {
		entries = append(entries, Entry[K, V]{
			Key:        it.key,
			Value:      it.value,
			CreatedAt:  it.createdAt,
			AccessedAt: it.accessedAt,
		})
	})
	return entries
}

// ForEach calls fn for every live entry, most recently used first. fn runs
// under the cache lock and must not call back into the cache.
func (c *Cache[K, V]) ForEach(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.walkLive(func(it *item[K, V]) {
		fn(it.key, it.value)
	})
}

// Flush eagerly removes every expired entry and returns how many were
// dropped. Intended for host-scheduled maintenance sweeps.
func (c *Cache[K, V]) Flush() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		if c.expired(el.Value.(*item[K, V]), now) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

// walkLive visits live entries front to back, dropping expired ones.
// Callers must hold c.mu.
func (c *Cache[K, V]) walkLive(visit func(*item[K, V])) {
	now := c.now()
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		it := el.Value.(*item[K, V])
		if c.expired(it, now) {
			c.removeElement(el)
		} else {
			visit(it)
		}
		el = next
	}
}
