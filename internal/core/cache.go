package core

import (
	"container/list"
	"sync"

	"carenova/pkg"
)

// Cache memoizes analysis reports by exact query text.  It is a
// size-bounded LRU: the original design grew without bound, which is a
// latent resource-growth risk under adversarial query variety.
type Cache struct {
	mu    sync.Mutex
	max   int
	order *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key    string
	report pkg.AnalysisReport
}

// NewCache constructs a cache holding at most max entries.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = 1024
	}
	return &Cache{
		max:   max,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// Get returns the cached report for the exact query text, if present.
func (c *Cache) Get(query string) (pkg.AnalysisReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[query]
	if !ok {
		return pkg.AnalysisReport{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).report, true
}

// Put stores a report under the exact query text, evicting the least
// recently used entry when full.
func (c *Cache) Put(query string, report pkg.AnalysisReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[query]; ok {
		el.Value.(*cacheEntry).report = report
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.max {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
	c.items[query] = c.order.PushFront(&cacheEntry{key: query, report: report})
}

// Len returns the number of cached reports.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
