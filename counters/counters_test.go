package counters

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersSnapshotAndReset(t *testing.T) {
	c := New()
	c.IncTotalRequests()
	c.IncStaticHit()
	c.IncTotalRequests()
	c.IncCachedHit()
	c.IncTotalRequests()
	c.IncDynamicHit()
	c.IncCacheMiss()
	c.IncTotalRequests()
	c.IncNotFound()
	c.IncInternalError()

	snap := c.Snapshot()
	assert.Equal(t, uint64(4), snap.TotalRequests)
	assert.Equal(t, uint64(1), snap.StaticHits)
	assert.Equal(t, uint64(1), snap.CachedHits)
	assert.Equal(t, uint64(1), snap.DynamicHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.Equal(t, uint64(1), snap.NotFound)
	assert.Equal(t, uint64(1), snap.InternalErrors)

	// Snapshot is idempotent: reading it again doesn't perturb the counters.
	snap2 := c.Snapshot()
	assert.Equal(t, snap, snap2)

	c.Reset()
	zero := c.Snapshot()
	assert.Equal(t, Snapshot{}, zero)
}

func TestCountersSnapshotJSON(t *testing.T) {
	c := New()
	c.IncTotalRequests()
	c.IncStaticHit()

	b, err := c.Snapshot().JSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"total_requests":1`)
	assert.Contains(t, string(b), `"static_hits":1`)
}

func TestCountersConcurrentIncrements(t *testing.T) {
	c := New()
	const goroutines = 50
	const perGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				c.IncTotalRequests()
				c.IncDynamicHit()
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, uint64(goroutines*perGoroutine), snap.TotalRequests)
	assert.Equal(t, uint64(goroutines*perGoroutine), snap.DynamicHits)
}
