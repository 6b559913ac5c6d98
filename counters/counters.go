// Package counters tracks the process-wide dispatch tallies the engine
// exposes through get_performance_stats: one atomic integer per tier hit
// plus a handful of internal bookkeeping counters, queryable as an
// immutable snapshot without perturbing the live values.
package counters

import (
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
)

// Counters holds the process-wide performance tallies described in
// spec §4.6. All fields are updated with atomic adds on the hot path and
// read with atomic loads when a Snapshot is taken; there is no lock.
type Counters struct {
	totalRequests  uint64
	staticHits     uint64
	cachedHits     uint64
	dynamicHits    uint64
	cacheMisses    uint64
	notFound       uint64
	internalErrors uint64
}

// New returns a zeroed Counters ready for concurrent use.
func New() *Counters { return &Counters{} }

// IncTotalRequests records the start of a dispatch. Exactly one of
// IncStaticHit/IncCachedHit/IncDynamicHit/IncNotFound is expected to
// follow for every IncTotalRequests call (spec P5).
func (c *Counters) IncTotalRequests() { atomic.AddUint64(&c.totalRequests, 1) }

// IncStaticHit records a request served from the static route table.
func (c *Counters) IncStaticHit() { atomic.AddUint64(&c.staticHits, 1) }

// IncCachedHit records a request served from the response cache.
func (c *Counters) IncCachedHit() { atomic.AddUint64(&c.cachedHits, 1) }

// IncDynamicHit records a request dispatched through the handler bridge,
// whether or not the handler itself ultimately succeeded.
func (c *Counters) IncDynamicHit() { atomic.AddUint64(&c.dynamicHits, 1) }

// IncCacheMiss records a dynamic-tier cache probe that found no valid
// entry (distinct from not_found: the route matched, the cache didn't).
func (c *Counters) IncCacheMiss() { atomic.AddUint64(&c.cacheMisses, 1) }

// IncNotFound records a request that matched no static entry, no cache
// entry, and no dynamic pattern.
func (c *Counters) IncNotFound() { atomic.AddUint64(&c.notFound, 1) }

// IncInternalError records a bridge panic, a handler transport error, or
// a malformed handler response (spec §4.4/§7). A missing handler is not
// counted here.
func (c *Counters) IncInternalError() { atomic.AddUint64(&c.internalErrors, 1) }

// Snapshot is the JSON-serializable view returned by get_performance_stats.
type Snapshot struct {
	TotalRequests  uint64 `json:"total_requests"`
	StaticHits     uint64 `json:"static_hits"`
	CachedHits     uint64 `json:"cached_hits"`
	DynamicHits    uint64 `json:"dynamic_hits"`
	CacheMisses    uint64 `json:"cache_misses"`
	NotFound       uint64 `json:"not_found"`
	InternalErrors uint64 `json:"internal_errors"`
}

// Snapshot reads every counter with a relaxed atomic load. It does not
// reset any value and is safe to call concurrently with increments.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		TotalRequests:  atomic.LoadUint64(&c.totalRequests),
		StaticHits:     atomic.LoadUint64(&c.staticHits),
		CachedHits:     atomic.LoadUint64(&c.cachedHits),
		DynamicHits:    atomic.LoadUint64(&c.dynamicHits),
		CacheMisses:    atomic.LoadUint64(&c.cacheMisses),
		NotFound:       atomic.LoadUint64(&c.notFound),
		InternalErrors: atomic.LoadUint64(&c.internalErrors),
	}
}

// Reset zeroes every counter. Callers that need a snapshot-then-reset
// delta must compute it themselves; this call makes no atomicity promise
// across the whole struct (spec §4.6).
func (c *Counters) Reset() {
	atomic.StoreUint64(&c.totalRequests, 0)
	atomic.StoreUint64(&c.staticHits, 0)
	atomic.StoreUint64(&c.cachedHits, 0)
	atomic.StoreUint64(&c.dynamicHits, 0)
	atomic.StoreUint64(&c.cacheMisses, 0)
	atomic.StoreUint64(&c.notFound, 0)
	atomic.StoreUint64(&c.internalErrors, 0)
}

var jsoniterFast = jsoniter.ConfigFastest

// JSON renders the snapshot the way get_performance_stats hands it back
// across the FFI boundary: a single JSON object, jsoniter-fast encoded.
func (s Snapshot) JSON() ([]byte, error) {
	return jsoniterFast.Marshal(s)
}
