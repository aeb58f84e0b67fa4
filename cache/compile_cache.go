package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Stats counts cache traffic since creation.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Len       int
}

// CompileCache keeps the results of compiling source files, keyed by
// (path, modification time).
type CompileCache[V any] struct {
	cache  *lru.Cache[FixedKey, V]
	mu     sync.RWMutex
	// flight collapses concurrent compiles of one key.
	flight singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func NewCompileCache[V any](size int) (*CompileCache[V], error) {
	c := &CompileCache[V]{}
	cache, err := lru.NewWithEvict(size, func(FixedKey, V) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("compile cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

func (c *CompileCache[V]) Get(key FixedKey) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.cache.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *CompileCache[V]) Add(key FixedKey, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(key, v)
}

// GetOrCompile returns the cached value for key, or runs compile and caches
// its result. Compiles of distinct keys run in parallel; concurrent callers
// of one key share a single compile. Failed compiles are not cached.
func (c *CompileCache[V]) GetOrCompile(key FixedKey, compile func() (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := c.cache.Get(key)
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v, nil
	}

	res, err, _ := c.flight.Do(string(key[:]), func() (any, error) {
		// A flight for this key may have finished since the read above.
		c.mu.RLock()
		v, ok := c.cache.Get(key)
		c.mu.RUnlock()
		if ok {
			c.hits.Add(1)
			return v, nil
		}
		c.misses.Add(1)

		v, err := compile()
		if err != nil {
			return nil, err
		}
		c.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *CompileCache[V]) Len() int {
	return c.cache.Len()
}

func (c *CompileCache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.cache.Len(),
	}
}

func (c *CompileCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}
