package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCache_SetGet(t *testing.T) {
	c := New(time.Minute)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(1, 42)
	balance, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(42), balance)

	// Entries are per item.
	_, ok = c.Get(2)
	assert.False(t, ok)
}

func TestBalanceCache_TTLExpiry(t *testing.T) {
	c := New(5 * time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(7, 100)
	balance, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, int64(100), balance)

	// One tick short of the TTL is still a hit.
	now = now.Add(5*time.Minute - time.Nanosecond)
	_, ok = c.Get(7)
	assert.True(t, ok)

	// At the TTL the entry is stale and gets dropped.
	now = now.Add(time.Nanosecond)
	_, ok = c.Get(7)
	assert.False(t, ok)

	c.mu.RLock()
	_, stillThere := c.entries[7]
	c.mu.RUnlock()
	assert.False(t, stillThere, "expired entry should be removed lazily")
}

func TestBalanceCache_Invalidate(t *testing.T) {
	c := New(time.Minute)

	c.Set(1, 10)
	c.Set(2, 20)
	c.Invalidate(1)

	_, ok := c.Get(1)
	assert.False(t, ok)

	balance, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(20), balance)

	// Invalidating an absent entry is a no-op.
	c.Invalidate(99)
}

func TestBalanceCache_Clear(t *testing.T) {
	c := New(time.Minute)

	c.Set(1, 10)
	c.Set(2, 20)
	c.Clear()

	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.False(t, ok)
}

func TestBalanceCache_DefaultTTL(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultTTL, c.ttl)

	c = New(-time.Second)
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestBalanceCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				id := uint(j % 8)
				c.Set(id, int64(n*j))
				c.Get(id)
				if j%50 == 0 {
					c.Invalidate(id)
				}
			}
		}(i)
	}
	wg.Wait()
}
