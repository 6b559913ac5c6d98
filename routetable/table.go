package routetable

import (
	"sync"
	"sync/atomic"

	router "github.com/julienschmidt/httprouter"

	"github.com/sufastgo/sufast/pattern"
)

// dynamicBucket holds one method's dynamic routes as an
// atomically-swapped immutable slice: readers Load the current
// snapshot and scan it with no synchronization at all; writers take mu
// only to serialize the read-append-store registration sequence
// (spec §4.1 "copy-on-write... readers take a reference to the current
// snapshot").
type dynamicBucket struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]*DynamicEntry]
}

func (b *dynamicBucket) load() []*DynamicEntry {
	p := b.snapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (b *dynamicBucket) append(entry *DynamicEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.load()
	next := make([]*DynamicEntry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, entry)
	b.snapshot.Store(&next)
}

// Table is the route table: the write-once static map plus the
// per-method copy-on-write dynamic lists.
type Table struct {
	static  sync.Map // Key -> *StaticEntry
	dynamic sync.Map // method string -> *dynamicBucket
}

// New returns an empty Table.
func New() *Table { return &Table{} }

// RegisterStatic inserts entry under key. It returns true on success and
// false if a static entry already exists for that key — overwriting a
// static route is forbidden so the pre-compiled contract stays
// predictable (spec §4.1).
func (t *Table) RegisterStatic(key Key, entry *StaticEntry) bool {
	_, loaded := t.static.LoadOrStore(key, entry)
	return !loaded
}

// LookupStatic is the O(1) exact-key probe spec §4.1 names. Reads never
// block, even during concurrent registration of other keys.
func (t *Table) LookupStatic(key Key) (*StaticEntry, bool) {
	v, ok := t.static.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*StaticEntry), true
}

// RegisterDynamic compiles pattern, validates it, and appends it to the
// method's snapshot list. It returns an error (never a panic) on a
// malformed pattern — unbalanced braces, an empty segment, a duplicate
// parameter name, or an invalid parameter identifier — so that bad
// patterns are rejected at registration and can never cause a later
// dispatch failure (spec §4.1).
func (t *Table) RegisterDynamic(method, patternStr, handlerName string, ttlSeconds int, opts RouteOptions) error {
	compiled, err := pattern.Compile(patternStr)
	if err != nil {
		return err
	}
	entry := &DynamicEntry{
		Pattern:     compiled,
		HandlerName: handlerName,
		TTLSeconds:  ttlSeconds,
		Options:     opts,
	}

	bucketIface, _ := t.dynamic.LoadOrStore(method, &dynamicBucket{})
	bucketIface.(*dynamicBucket).append(entry)
	return nil
}

// MatchDynamic walks the method's dynamic list in registration order and
// returns the first pattern whose matcher accepts path end-to-end.
// Registration order is the only tiebreaker the engine exposes — there
// is no specificity ranking (spec §4.1).
func (t *Table) MatchDynamic(method, path string) (*Match, bool) {
	v, ok := t.dynamic.Load(method)
	if !ok {
		return nil, false
	}
	entries := v.(*dynamicBucket).load()
	for _, entry := range entries {
		values, ok := entry.Pattern.Match(path)
		if !ok {
			continue
		}
		names := entry.Pattern.ParamNames
		params := make(router.Params, len(names))
		for i, name := range names {
			params[i] = router.Param{Key: name, Value: values[i]}
		}
		return &Match{Entry: entry, Params: params}, true
	}
	return nil, false
}

// DynamicCount returns the number of dynamic routes registered for
// method, for diagnostics and tests.
func (t *Table) DynamicCount(method string) int {
	v, ok := t.dynamic.Load(method)
	if !ok {
		return 0
	}
	return len(v.(*dynamicBucket).load())
}
