// Package cache provides the bounded in-memory stores behind browser
// sessions and prepared downloads.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a namespaced least-recently-used cache with an optional entry
// lifetime. It is safe for concurrent use.
type LRU[V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[string]*list.Element
	queue    *list.List
	mutex    sync.Mutex
	onEvict  func(namespace, key string, value V)
}

type entry[V any] struct {
	namespace string
	key       string
	value     V
	expires   time.Time
}

// Option configures an LRU.
type Option[V any] func(c *LRU[V])

// WithTTL expires entries ttl after their last Set. Zero disables expiry.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(c *LRU[V]) { c.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *LRU[V]) { c.now = now }
}

// WithEvictHook is called, under the cache lock, for every entry dropped by
// capacity or expiry.
func WithEvictHook[V any](fn func(namespace, key string, value V)) Option[V] {
	return func(c *LRU[V]) { c.onEvict = fn }
}

// New creates a cache holding at most capacity entries across all
// namespaces. Capacity below one is treated as one.
func New[V any](capacity int, opts ...Option[V]) *LRU[V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &LRU[V]{
		capacity: capacity,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func compositeKey(namespace, key string) string {
	return namespace + ":" + key
}

// Set adds or replaces a value and marks it most recently used.
func (c *LRU[V]) Set(namespace, key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ck := compositeKey(namespace, key)
	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if element, exists := c.items[ck]; exists {
		c.queue.MoveToFront(element)
		e := element.Value.(*entry[V])
		e.value = value
		e.expires = expires
		return
	}

	element := c.queue.PushFront(&entry[V]{
		namespace: namespace,
		key:       key,
		value:     value,
		expires:   expires,
	})
	c.items[ck] = element

	for c.queue.Len() > c.capacity {
		c.removeElement(c.queue.Back(), true)
	}
}

// Get returns the value and marks it most recently used. Expired entries
// are dropped and reported missing.
func (c *LRU[V]) Get(namespace, key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	element, exists := c.items[compositeKey(namespace, key)]
	if !exists {
		return zero, false
	}
	if c.expired(element) {
		c.removeElement(element, true)
		return zero, false
	}
	c.queue.MoveToFront(element)
	return element.Value.(*entry[V]).value, true
}

// Take returns the value and removes it, for one-shot entries.
func (c *LRU[V]) Take(namespace, key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	element, exists := c.items[compositeKey(namespace, key)]
	if !exists {
		return zero, false
	}
	if c.expired(element) {
		c.removeElement(element, true)
		return zero, false
	}
	c.removeElement(element, false)
	return element.Value.(*entry[V]).value, true
}

// Invalidate removes a single entry.
func (c *LRU[V]) Invalidate(namespace, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, exists := c.items[compositeKey(namespace, key)]; exists {
		c.removeElement(element, false)
	}
}

// InvalidateNamespace removes every entry of namespace.
func (c *LRU[V]) InvalidateNamespace(namespace string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var doomed []*list.Element
	for _, element := range c.items {
		if element.Value.(*entry[V]).namespace == namespace {
			doomed = append(doomed, element)
		}
	}
	for _, element := range doomed {
		c.removeElement(element, false)
	}
}

// Size returns the number of entries, expired ones included until touched.
func (c *LRU[V]) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.queue.Len()
}

func (c *LRU[V]) expired(element *list.Element) bool {
	e := element.Value.(*entry[V])
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *LRU[V]) removeElement(element *list.Element, evicted bool) {
	if element == nil {
		return
	}
	c.queue.Remove(element)
	e := element.Value.(*entry[V])
	delete(c.items, compositeKey(e.namespace, e.key))
	if evicted && c.onEvict != nil {
		c.onEvict(e.namespace, e.key, e.value)
	}
}
