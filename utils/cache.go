package utils

import (
	"sync"

	"github.com/floatdrop/lru"
)

type Cache[K comparable, T any] interface {
	Get(key K) (value T, ok bool)
	Set(key K, value T)
	Delete(key K)
	Clear()
	Stats() (hits, misses uint64)
}

// LRUCache Thread-safe least recently used cache of a fixed capacity
type LRUCache[K comparable, T any] struct {
	lock   sync.Mutex
	size   int
	values *lru.LRU[K, T]
	hits   uint64
	misses uint64
}

func NewLRUCache[K comparable, T any](size int) *LRUCache[K, T] {
	return &LRUCache[K, T]{
		size:   size,
		values: lru.New[K, T](size),
	}
}

func (c *LRUCache[K, T]) Get(key K) (value T, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if v := c.values.Get(key); v != nil {
		c.hits++
		return *v, true
	}
	c.misses++
	return value, false
}

func (c *LRUCache[K, T]) Set(key K, value T) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.values.Set(key, value)
}

func (c *LRUCache[K, T]) Delete(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.values.Delete(key)
}

func (c *LRUCache[K, T]) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.values = lru.New[K, T](c.size)
	c.hits, c.misses = 0, 0
}

func (c *LRUCache[K, T]) Stats() (hits, misses uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.hits, c.misses
}

var _ Cache[int, int] = (*LRUCache[int, int])(nil)
