package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

// CacheKey derives a content hash from a ticker set and date range so that
// equal requests share one cache slot regardless of ticker order.
func CacheKey(symbols []string, days int) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	h := sha256.New()
	for _, s := range sorted {
		fmt.Fprintf(h, "%s\x00", s)
	}
	fmt.Fprintf(h, "%d", days)
	return hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	series   *model.PriceSeries
	lastUsed time.Time
	hits     int
}

// Cache is a bounded in-memory dataset cache. Eviction removes the entry
// with the fewest hits, breaking ties by oldest last use, so frequently
// requested datasets survive longer than one-off lookups.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheEntry
	now      func() time.Time
}

// NewCache creates a cache holding at most capacity datasets.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry),
		now:      time.Now,
	}
}

// Get returns the cached series for key, promoting it on hit.
func (c *Cache) Get(key string) (*model.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e.hits++
	e.lastUsed = c.now()
	return e.series, true
}

// Put stores the series under key, evicting if the cache is full.
func (c *Cache) Put(key string, series *model.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.series = series
		e.lastUsed = c.now()
		return
	}
	if len(c.entries) >= c.capacity {
		c.evict()
	}
	c.entries[key] = &cacheEntry{series: series, lastUsed: c.now()}
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evict() {
	var victim string
	var victimEntry *cacheEntry
	for key, e := range c.entries {
		if victimEntry == nil ||
			e.hits < victimEntry.hits ||
			(e.hits == victimEntry.hits && e.lastUsed.Before(victimEntry.lastUsed)) {
			victim = key
			victimEntry = e
		}
	}
	if victimEntry != nil {
		delete(c.entries, victim)
	}
}
