package cache

import (
	"sync"

	"github.com/rohmanhakim/page-scraper/pkg/hashutil"
)

const shardCount = 32

type shard struct {
	mu   sync.RWMutex
	data map[string]Entry
}

// MemoryCache is an in-memory implementation of the Cache interface.
//
// Entries are spread over a fixed set of shards selected by the key digest,
// each guarded by its own RWMutex. Callers working on distinct keys rarely
// touch the same lock; writers of the same key serialize on its shard, so
// the stored entry is always exactly one of the writes (last write wins).
//
// The cache lives only for the lifetime of the process. It has no eviction.
type MemoryCache struct {
	shards [shardCount]*shard
}

// NewMemoryCache creates a new in-memory cache instance.
// The cache is initialized empty and ready for use.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	for i := range c.shards {
		c.shards[i] = &shard{data: make(map[string]Entry)}
	}
	return c
}

func (c *MemoryCache) shardFor(key FetchKey) *shard {
	return c.shards[hashutil.Sum64([]byte(key.ID()))%shardCount]
}

// Get retrieves the entry for key.
// This method is thread-safe for concurrent reads.
func (c *MemoryCache) Get(key FetchKey) (Entry, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.data[key.ID()]
	return entry, exists
}

// Put stores entry under key, overwriting any existing entry.
// This method is thread-safe for concurrent writes.
func (c *MemoryCache) Put(key FetchKey, entry Entry) {
	stored := NewEntry(entry.items, entry.createdAt)

	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key.ID()] = stored
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.data = make(map[string]Entry)
		s.mu.Unlock()
	}
}

// Size returns the number of entries in the cache.
// This method is primarily useful for testing and diagnostics.
func (c *MemoryCache) Size() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.data)
		s.mu.RUnlock()
	}
	return total
}
