package gplates

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
)

// CachedRotator wraps a Rotator with an in-memory LRU cache keyed by the
// rounded point and age.
type CachedRotator struct {
	inner   domain.Rotator
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedRotator creates a cache decorator around a rotator.
func NewCachedRotator(inner domain.Rotator, maxEntries int, metrics *observability.Metrics) *CachedRotator {
	return &CachedRotator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// MaxBatch delegates to the wrapped rotator.
func (c *CachedRotator) MaxBatch() int { return c.inner.MaxBatch() }

// Rotate serves cached points and forwards only the misses.
func (c *CachedRotator) Rotate(ctx context.Context, points []domain.Point, age float64) ([]domain.Point, error) {
	out := make([]domain.Point, len(points))
	var (
		missIdx []int
		misses  []domain.Point
	)
	for i, p := range points {
		if v, ok := c.cache.get(cacheKey(p, age)); ok {
			out[i] = v
			c.metrics.RotationCache.WithLabelValues("hit").Inc()
			continue
		}
		c.metrics.RotationCache.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
		misses = append(misses, p)
	}
	if len(misses) == 0 {
		return out, nil
	}

	rotated, err := c.inner.Rotate(ctx, misses, age)
	if err != nil {
		return nil, err
	}
	if len(rotated) != len(misses) {
		return nil, fmt.Errorf("%w: %d points for %d requested", ErrMalformed, len(rotated), len(misses))
	}
	for j, i := range missIdx {
		out[i] = rotated[j]
		// Points the model cannot place are not cached so they can be retried.
		if !math.IsNaN(rotated[j].Lat) && !math.IsNaN(rotated[j].Lon) {
			c.cache.put(cacheKey(points[i], age), rotated[j])
		}
	}
	return out, nil
}

func cacheKey(p domain.Point, age float64) string {
	return fmt.Sprintf("%s,%s@%s", formatCoord(p.Lat), formatCoord(p.Lon), formatCoord(age))
}

// lruCache is a simple thread-safe LRU cache of rotated points.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.Point
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Point{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
