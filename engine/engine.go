// Package engine wires the route table, response cache, handler bridge,
// and performance counters into the three-tier request pipeline: every
// request is classified, in a fixed order, as a static hit, a cached
// hit, a dynamic dispatch, or a 404 (spec §4.5). Engine exposes both a
// net/http and a fasthttp entrypoint over the same classification path.
package engine

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
	"unsafe"

	"github.com/valyala/fasthttp"

	"github.com/sufastgo/sufast/bridge"
	"github.com/sufastgo/sufast/counters"
	"github.com/sufastgo/sufast/respcache"
	"github.com/sufastgo/sufast/routetable"
)

var (
	notFoundBody = []byte(`{"error":"not_found"}`)
	badInputBody = []byte(`{"error":"bad_request"}`)
	jsonCT       = "application/json"
)

// DispatchFunc invokes the handler bridge for one dynamic-tier request.
type DispatchFunc func(bridge.Request) (bridge.Response, error)

// Middleware wraps the dynamic-tier dispatch call only — the static and
// cached tiers never reach it, per SPEC_FULL.md §4's supplement (the
// original engine exposes no hook at all; this generalizes the
// teacher's global-middleware idea to the one place a host-language
// call actually happens).
type Middleware func(DispatchFunc) DispatchFunc

// Config bounds request parsing and the response cache's footprint.
// There is deliberately no file-based configuration layer — callers
// construct Config in code, matching the teacher's code-configured App.
type Config struct {
	// MaxRequestLineBytes bounds path+query length; 0 means unbounded.
	MaxRequestLineBytes int
	// MaxBodyBytes bounds the request body read from the wire; 0 means
	// unbounded.
	MaxBodyBytes int64
	// MaxCacheEntries bounds the response cache; 0 means unbounded.
	MaxCacheEntries int
	// MetricsNamespace names the optional Prometheus collector.
	MetricsNamespace string
}

// Engine is the request-dispatch core. The zero value is not usable;
// construct with New.
type Engine struct {
	table    *routetable.Table
	cache    *respcache.Cache
	bridge   *bridge.Bridge
	counters *counters.Counters

	cfg        Config
	middleware []Middleware
	logger     *slog.Logger
}

// New builds an Engine ready to accept registrations and serve traffic.
func New(cfg Config) *Engine {
	e := &Engine{
		table:    routetable.New(),
		cache:    respcache.New(respcache.Config{MaxEntries: cfg.MaxCacheEntries}),
		bridge:   bridge.New(),
		counters: counters.New(),
		cfg:      cfg,
	}
	e.SetLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	return e
}

// SetLogger sets the engine's logger. New installs a JSON logger on
// stdout; Logger falls back to slog.Default only when the logger is nil
// (for example after SetLogger(nil)).
func (e *Engine) SetLogger(l *slog.Logger) { e.logger = l }

// Logger returns the configured logger or slog.Default.
func (e *Engine) Logger() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// Use registers middleware around the handler bridge call. Middleware
// registered first runs outermost, matching the teacher's Use ordering.
func (e *Engine) Use(mw ...Middleware) {
	e.middleware = append(e.middleware, mw...)
}

// RegisterStatic installs a pre-rendered response under method+path. It
// returns false if that key is already registered — overwriting a
// static route is forbidden (spec §4.1).
func (e *Engine) RegisterStatic(method, path string, body []byte, status int, contentType string) bool {
	return e.table.RegisterStatic(
		routetable.Key{Method: method, Path: path},
		&routetable.StaticEntry{Body: body, Status: status, ContentType: contentType},
	)
}

// RegisterDynamic compiles pattern and binds it to the handler bridge
// under method, with an optional response TTL and widened options
// (SPEC_FULL.md §5). It returns an error for a malformed pattern.
func (e *Engine) RegisterDynamic(method, pattern, handlerName string, ttlSeconds int, opts routetable.RouteOptions) error {
	return e.table.RegisterDynamic(method, pattern, handlerName, ttlSeconds, opts)
}

// InstallHandler sets the process-wide handler bridge callback. It is
// one-shot: subsequent calls are no-ops and return false.
func (e *Engine) InstallHandler(h bridge.Handler) bool {
	return e.bridge.Install(h)
}

// Precompile is a compatibility no-op: every dynamic pattern is already
// compiled to a regexp at RegisterDynamic time, so there is no separate
// build step to trigger. It exists because the cross-language origin of
// this design calls a precompile step explicitly before serving.
func (e *Engine) Precompile() error { return nil }

// ClearCache empties the response cache unconditionally.
func (e *Engine) ClearCache() { e.cache.Clear() }

// GetPerformanceStats returns a point-in-time snapshot of the atomic
// request counters.
func (e *Engine) GetPerformanceStats() counters.Snapshot {
	return e.counters.Snapshot()
}

// PrometheusCollector returns a prometheus.Collector view over the
// engine's counters, for hosts embedding the engine as a Go library.
func (e *Engine) PrometheusCollector() *counters.PrometheusCollector {
	return counters.NewPrometheusCollector(e.counters, e.cfg.MetricsNamespace)
}

// result is the fully-resolved outcome of one dispatch, independent of
// transport.
type result struct {
	status      int
	contentType string
	body        []byte
}

func (e *Engine) requestLineTooLong(path, query string) bool {
	return e.cfg.MaxRequestLineBytes > 0 && len(path)+len(query) > e.cfg.MaxRequestLineBytes
}

// dispatch runs the fixed classification order spec §4.5 requires:
// static, then cache, then dynamic (via the bridge), then 404.
func (e *Engine) dispatch(now time.Time, method, path, query string, headers map[string]string, body []byte) result {
	if e.requestLineTooLong(path, query) {
		return result{status: http.StatusBadRequest, contentType: jsonCT, body: badInputBody}
	}

	e.counters.IncTotalRequests()

	staticKey := routetable.Key{Method: method, Path: path}
	if entry, ok := e.table.LookupStatic(staticKey); ok {
		e.counters.IncStaticHit()
		return result{status: entry.Status, contentType: entry.ContentType, body: entry.Body}
	}

	cacheKey := respcache.Key{Method: method, Path: path}
	if cached, ok := e.cache.Get(cacheKey, now); ok {
		e.counters.IncCachedHit()
		return result{status: cached.Status, contentType: cached.ContentType, body: cached.Body}
	}

	match, ok := e.table.MatchDynamic(method, path)
	if !ok {
		e.counters.IncNotFound()
		return result{status: http.StatusNotFound, contentType: jsonCT, body: notFoundBody}
	}
	e.counters.IncCacheMiss()

	params := make(map[string]string, len(match.Params))
	for _, p := range match.Params {
		params[p.Key] = p.Value
	}

	req := bridge.Request{Method: method, Path: path, Query: query, Params: params, Headers: headers, Body: body}

	dispatchFn := DispatchFunc(e.bridge.Dispatch)
	for i := len(e.middleware) - 1; i >= 0; i-- {
		dispatchFn = e.middleware[i](dispatchFn)
	}

	resp, err := dispatchFn(req)
	e.counters.IncDynamicHit()
	if err != nil {
		if !errors.Is(err, bridge.ErrNoHandler) {
			e.counters.IncInternalError()
		}
		e.Logger().Error("dynamic dispatch failed", "method", method, "path", path, "err", err)
		return result{status: resp.Status, contentType: resp.ContentType, body: resp.Body}
	}

	if match.Entry.TTLSeconds > 0 {
		e.cache.Put(cacheKey,
			respcache.Entry{Body: resp.Body, Status: resp.Status, ContentType: resp.ContentType},
			time.Duration(match.Entry.TTLSeconds)*time.Second, now)
	}
	return result{status: resp.Status, contentType: resp.ContentType, body: resp.Body}
}

// ServeHTTP implements http.Handler, the net/http compatibility
// transport (spec §6's "a host may also embed the engine directly").
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		reader := io.Reader(r.Body)
		if e.cfg.MaxBodyBytes > 0 {
			reader = io.LimitReader(reader, e.cfg.MaxBodyBytes+1)
		}
		b, err := io.ReadAll(reader)
		if err == nil {
			body = b
		}
	}
	if e.cfg.MaxBodyBytes > 0 && int64(len(body)) > e.cfg.MaxBodyBytes {
		w.Header().Set("Content-Type", jsonCT)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(badInputBody)
		return
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	res := e.dispatch(time.Now(), r.Method, r.URL.Path, r.URL.RawQuery, headers, body)
	writeHTTP(w, res)
}

func writeHTTP(w http.ResponseWriter, res result) {
	if res.contentType != "" {
		w.Header().Set("Content-Type", res.contentType)
	}
	status := res.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(res.body)
}

// ServeFastHTTP implements fasthttp.RequestHandler, the primary,
// high-throughput transport (spec §4.5's intended hot path).
func (e *Engine) ServeFastHTTP(fctx *fasthttp.RequestCtx) {
	methodBytes := fctx.Method()
	pathBytes := fctx.Path()
	method := *(*string)(unsafe.Pointer(&methodBytes))
	path := *(*string)(unsafe.Pointer(&pathBytes))

	if e.cfg.MaxBodyBytes > 0 && int64(len(fctx.PostBody())) > e.cfg.MaxBodyBytes {
		fctx.SetStatusCode(fasthttp.StatusBadRequest)
		fctx.SetContentType(jsonCT)
		fctx.SetBody(badInputBody)
		return
	}

	headers := make(map[string]string)
	fctx.Request.Header.VisitAll(func(k, v []byte) {
		headers[string(k)] = string(v)
	})

	res := e.dispatch(time.Now(), method, path, string(fctx.QueryArgs().QueryString()), headers, fctx.PostBody())

	status := res.status
	if status == 0 {
		status = http.StatusOK
	}
	fctx.SetStatusCode(status)
	if res.contentType != "" {
		fctx.SetContentType(res.contentType)
	}
	fctx.SetBody(res.body)
}
