package opendata

import (
	"context"
	"sync"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
	"github.com/couchcryptid/ev-demand-service/internal/observability"
)

// Lookups combines both lookup ports so one decorator can wrap a Client.
type Lookups interface {
	domain.PopulationLookup
	domain.StationLookup
}

// CachedLookup wraps Lookups with per-kind in-memory LRU caches. Errors are
// never cached.
type CachedLookup struct {
	inner      Lookups
	population *lruCache[int]
	stations   *lruCache[[]domain.Station]
	metrics    *observability.Metrics
}

// NewCachedLookup creates a cache decorator holding at most maxEntries
// results per kind.
func NewCachedLookup(inner Lookups, maxEntries int, metrics *observability.Metrics) *CachedLookup {
	return &CachedLookup{
		inner:      inner,
		population: newLRUCache[int](maxEntries),
		stations:   newLRUCache[[]domain.Station](maxEntries),
		metrics:    metrics,
	}
}

func (c *CachedLookup) ResidentsCount(ctx context.Context, area domain.AreaID) (int, error) {
	if n, ok := c.population.get(area); ok {
		c.metrics.LookupCache.WithLabelValues(kindPopulation, "hit").Inc()
		return n, nil
	}
	c.metrics.LookupCache.WithLabelValues(kindPopulation, "miss").Inc()

	n, err := c.inner.ResidentsCount(ctx, area)
	if err != nil {
		return 0, err
	}
	c.population.put(area, n)
	return n, nil
}

func (c *CachedLookup) FindStationsByArea(ctx context.Context, area domain.AreaID) ([]domain.Station, error) {
	if stations, ok := c.stations.get(area); ok {
		c.metrics.LookupCache.WithLabelValues(kindStations, "hit").Inc()
		return append([]domain.Station(nil), stations...), nil
	}
	c.metrics.LookupCache.WithLabelValues(kindStations, "miss").Inc()

	stations, err := c.inner.FindStationsByArea(ctx, area)
	if err != nil {
		return nil, err
	}
	c.stations.put(area, append([]domain.Station(nil), stations...))
	return stations, nil
}

// lruCache is a simple thread-safe LRU cache keyed by area.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[domain.AreaID]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   domain.AreaID
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[domain.AreaID]*entry[V]),
	}
}

func (c *lruCache[V]) get(key domain.AreaID) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key domain.AreaID, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
