// Package routetable holds the three registered route populations spec
// §3/§4.1 describes: pre-rendered static responses, compiled dynamic
// patterns, and the cache-policy metadata that rides along with each
// dynamic entry. It answers classification lookups without taking a
// lock on the read path — the static population is a write-once
// concurrent map, and the dynamic population per method is an immutable
// snapshot swapped atomically on registration (copy-on-write).
package routetable

import (
	router "github.com/julienschmidt/httprouter"

	"github.com/sufastgo/sufast/pattern"
)

// Key identifies a route uniquely within one population: a method token
// paired with the literal path or pattern string (spec §3).
type Key struct {
	Method string
	Path   string
}

// StaticEntry is a fully rendered response registered before serving
// begins. It is immutable after registration, lives for the life of the
// process, is never evicted by the cache, and never consults the
// handler bridge (spec §3).
type StaticEntry struct {
	Body        []byte
	Status      int
	ContentType string
}

// RouteOptions is the widened registration metadata a host may attach to
// a dynamic route at register_dynamic time (SPEC_FULL.md §5). It is
// carried for diagnostics only — dispatch priority and matching never
// consult it (spec §4.1's registration-order contract is unconditional).
type RouteOptions struct {
	RequireAuth  bool           `mapstructure:"require_auth"`
	RateLimitRPS int            `mapstructure:"rate_limit_rps"`
	Tags         []string       `mapstructure:"tags"`
	Extra        map[string]any `mapstructure:"-"`
}

// DynamicEntry is a (method, pattern) binding to the single process-wide
// handler bridge, with an optional TTL governing response caching
// (spec §3). HandlerName is stored for diagnostics only; invocation
// always goes through the bridge, never through a per-route callback.
type DynamicEntry struct {
	Pattern     *pattern.Pattern
	HandlerName string
	TTLSeconds  int
	Options     RouteOptions
}

// Match is the result of a successful dynamic lookup: the entry that
// matched and the ordered parameter bindings extracted from the path.
// Params uses httprouter's Param/Params type, which already expresses
// the "ordered mapping, insertion order matches the pattern" invariant
// spec §3/§8-P3 require.
type Match struct {
	Entry  *DynamicEntry
	Params router.Params
}
