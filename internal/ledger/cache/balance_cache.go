// Package cache memoizes derived balances so reads do not re-fold the full
// movement history every time.
package cache

import (
	"sync"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/metrics"
)

// DefaultTTL bounds how long a cached balance is trusted without an
// explicit invalidation. The cache is process-local, so TTL expiry is what
// defends against writes committed by another process sharing the database.
const DefaultTTL = 5 * time.Minute

type entry struct {
	computedAt time.Time
	balance    int64
}

// BalanceCache is an advisory, TTL-bounded memo of item balances. It is safe
// for concurrent use. A miss must always fall back to the balance fold; the
// cache never substitutes a default.
type BalanceCache struct {
	mu      sync.RWMutex
	entries map[uint]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache with the given TTL. A non-positive ttl falls back to
// DefaultTTL.
func New(ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BalanceCache{
		entries: make(map[uint]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached balance for the item, or ok=false when absent or
// older than the TTL. Expired entries are removed lazily.
func (c *BalanceCache) Get(itemID uint) (int64, bool) {
	c.mu.RLock()
	e, ok := c.entries[itemID]
	c.mu.RUnlock()

	if ok && c.now().Sub(e.computedAt) < c.ttl {
		metrics.CacheHits.Inc()
		return e.balance, true
	}
	if ok {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced the expiry.
		if e, ok = c.entries[itemID]; ok && c.now().Sub(e.computedAt) >= c.ttl {
			delete(c.entries, itemID)
		}
		c.mu.Unlock()
		if ok && c.now().Sub(e.computedAt) < c.ttl {
			metrics.CacheHits.Inc()
			return e.balance, true
		}
	}
	metrics.CacheMisses.Inc()
	return 0, false
}

// Set stores a freshly computed balance.
func (c *BalanceCache) Set(itemID uint, balance int64) {
	c.mu.Lock()
	c.entries[itemID] = entry{computedAt: c.now(), balance: balance}
	c.mu.Unlock()
}

// Invalidate drops the entry for one item. Called after every committed
// movement against it.
func (c *BalanceCache) Invalidate(itemID uint) {
	c.mu.Lock()
	delete(c.entries, itemID)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *BalanceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uint]entry)
	c.mu.Unlock()
}
