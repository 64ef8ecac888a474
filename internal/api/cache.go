package api

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// queryCache holds decoded query results keyed by request URL.
type queryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newQueryCache(ttl time.Duration) *queryCache {
	return &queryCache{ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

func (q *queryCache) get(key string) (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[key]
	if !ok {
		return nil, false
	}
	if !q.now().Before(e.expires) {
		delete(q.entries, key)
		return nil, false
	}
	return e.value, true
}

func (q *queryCache) set(key string, value any) {
	if q.ttl <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[key] = cacheEntry{value: value, expires: q.now().Add(q.ttl)}
}

func (q *queryCache) delete(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, key)
}

func (q *queryCache) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.entries)
}
