package application

import (
	"sync"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/jonboulle/clockwork"
)

const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	snapshot  domain.Snapshot
	createdAt time.Time
	expiresAt time.Time
}

// SnapshotCache holds one resolved snapshot per scope key. Expiry is checked
// on read; expired entries stay in the map until the next Put replaces them.
type SnapshotCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	clock      clockwork.Clock
	entries    map[domain.ScopeKey]cacheEntry
	generation uint64
}

func NewSnapshotCache(ttl time.Duration, clock clockwork.Clock) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &SnapshotCache{
		ttl:     ttl,
		clock:   clock,
		entries: map[domain.ScopeKey]cacheEntry{},
	}
}

func (c *SnapshotCache) TTL() time.Duration {
	return c.ttl
}

func (c *SnapshotCache) Get(key domain.ScopeKey) (domain.Snapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return domain.Snapshot{}, false
	}

	return entry.snapshot.Clone(), true
}

// Put stores snapshot for key unless the cache was invalidated after
// generation was read. It reports whether the entry was written.
func (c *SnapshotCache) Put(key domain.ScopeKey, snapshot domain.Snapshot, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation < c.generation {
		return false
	}

	now := c.clock.Now()
	c.entries[key] = cacheEntry{
		snapshot:  snapshot.Clone(),
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}

	return true
}

func (c *SnapshotCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.generation
}

// InvalidateAll drops every entry and returns the new generation.
func (c *SnapshotCache) InvalidateAll() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	clear(c.entries)

	return c.generation
}
