package hints

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// HintCache is a short-TTL, size-bounded cache in front of the advice call.
// It exists to absorb rapid duplicate requests from UI re-renders, not as a
// durability layer; the hosting process may be recycled at any time.
type HintCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxSize    int
	evictBatch int
	now        func() time.Time
}

type cacheEntry struct {
	result   *HintResult
	storedAt time.Time
}

const (
	defaultCacheTTL   = 30 * time.Second
	defaultCacheSize  = 200
	defaultEvictBatch = 50
)

func NewHintCache() *HintCache {
	return &HintCache{
		entries:    make(map[string]cacheEntry),
		ttl:        defaultCacheTTL,
		maxSize:    defaultCacheSize,
		evictBatch: defaultEvictBatch,
		now:        time.Now,
	}
}

// BuildCacheKey derives the cache key for a conversation. The last fan
// message timestamp is part of the key so a new inbound message can never be
// answered from stale advice; zero (no fan message seen) maps to "none".
func BuildCacheKey(creatorID, chatID string, lastFanMessageTs int64) string {
	ts := "none"
	if lastFanMessageTs > 0 {
		ts = fmt.Sprintf("%d", lastFanMessageTs)
	}
	return creatorID + ":" + chatID + ":" + ts
}

func (c *HintCache) Get(key string) *HintResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil
	}
	return entry.result
}

func (c *HintCache) Set(key string, result *HintResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, storedAt: c.now()}
	if len(c.entries) <= c.maxSize {
		return
	}
	// Over capacity: drop the oldest batch by store time.
	type aged struct {
		key      string
		storedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].storedAt.Before(all[j].storedAt) })
	n := c.evictBatch
	if n > len(all) {
		n = len(all)
	}
	for i := 0; i < n; i++ {
		delete(c.entries, all[i].key)
	}
}

func (c *HintCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *HintCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
