// Command libsufast is the C-ABI registration surface spec §6 names: a
// host process (the reference design targets a Python decorator layer,
// out of scope per spec §1) links this as a shared library, built with
//
//	go build -buildmode=c-shared -o libsufast.so ./cmd/libsufast
//
// and drives the engine entirely through the exported functions below
// (the seven registration functions plus free_cstring). There is exactly one process-wide *engine.Engine behind a
// package-level sync.Once, the residual global spec §9's Design Notes
// call out as unavoidable: a C callback has no `self` parameter, so the
// handler bridge (and, transitively, the engine it belongs to) must
// live at package scope rather than behind a constructor a Go caller
// would hold a handle to.
package main

/*
#include <stdlib.h>

// handler_cb is the host-supplied callback install_handler stores: given
// the method, the request path, and a JSON-encoded parameter map (all
// borrowed C strings, valid only for the duration of the call per spec
// §4.4's memory-ownership discipline), it returns a malloc'd JSON string
// shaped `{"body": <string>, "status": <u16>, "headers": {...}}` (spec
// §6's handler call schema). The engine copies the bytes out with
// C.GoString before returning control, so the host may free its buffer
// immediately after the call returns.
typedef char* (*handler_cb)(const char* method, const char* path, const char* params_json);

static char* call_handler(handler_cb cb, const char* method, const char* path, const char* params_json) {
    return cb(method, path, params_json);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/sufastgo/sufast/bridge"
	"github.com/sufastgo/sufast/engine"
	"github.com/sufastgo/sufast/routetable"
)

var bridgeJSON = jsoniter.ConfigFastest

var (
	initOnce sync.Once
	eng      *engine.Engine
)

// engineInstance returns the one process-wide Engine, constructing it
// on first use. Every exported function below routes through this.
func engineInstance() *engine.Engine {
	initOnce.Do(func() {
		eng = engine.New(engine.Config{
			MaxRequestLineBytes: 8 * 1024,
			MaxBodyBytes:        1 << 20,
			MaxCacheEntries:     10000,
		})
	})
	return eng
}

// install_handler stores the host's callback as the engine's single
// process-wide handler bridge slot. It is one-shot: a second call is a
// no-op (spec §4.4 "Subsequent installs fail").
//
//export install_handler
func install_handler(cb C.handler_cb) {
	e := engineInstance()
	e.InstallHandler(func(reqJSON []byte) ([]byte, error) {
		var req bridge.Request
		if err := bridgeJSON.Unmarshal(reqJSON, &req); err != nil {
			return nil, fmt.Errorf("libsufast: decoding bridge request: %w", err)
		}

		paramsJSON, err := bridgeJSON.Marshal(req.Params)
		if err != nil {
			return nil, fmt.Errorf("libsufast: encoding params: %w", err)
		}

		cMethod := C.CString(req.Method)
		cPath := C.CString(req.Path)
		cParams := C.CString(string(paramsJSON))
		defer C.free(unsafe.Pointer(cMethod))
		defer C.free(unsafe.Pointer(cPath))
		defer C.free(unsafe.Pointer(cParams))

		cResp := C.call_handler(cb, cMethod, cPath, cParams)
		if cResp == nil {
			return nil, fmt.Errorf("libsufast: handler returned a null response")
		}
		// Copy the host's buffer into Go memory immediately; the host is
		// free to release cResp as soon as this call returns (spec §4.4).
		wireJSON := C.GoString(cResp)

		var wire struct {
			Body    string            `json:"body"`
			Status  int               `json:"status"`
			Headers map[string]string `json:"headers"`
		}
		if err := bridgeJSON.Unmarshal([]byte(wireJSON), &wire); err != nil {
			return nil, fmt.Errorf("libsufast: decoding handler response: %w", err)
		}

		contentType := wire.Headers["Content-Type"]
		if contentType == "" {
			contentType = wire.Headers["content-type"]
		}
		if contentType == "" {
			contentType = "text/plain"
		}
		delete(wire.Headers, "Content-Type")
		delete(wire.Headers, "content-type")

		resp := bridge.Response{
			Status:      wire.Status,
			ContentType: contentType,
			Headers:     wire.Headers,
			Body:        []byte(wire.Body),
		}
		return bridgeJSON.Marshal(resp)
	})
}

// register_static adds a pre-rendered static entry. body/bodyLen are a
// borrowed byte buffer (not assumed null-terminated, since a rendered
// body may legitimately contain a NUL byte). Returns 1 on success, 0 if
// the (method, path) key is already registered (spec §4.1).
//
//export register_static
func register_static(method, path *C.char, body *C.char, bodyLen C.int, status C.int, contentType *C.char) C.int {
	e := engineInstance()
	bodyBytes := C.GoBytes(unsafe.Pointer(body), bodyLen)
	ok := e.RegisterStatic(C.GoString(method), C.GoString(path), bodyBytes, int(status), C.GoString(contentType))
	return boolToC(ok)
}

// register_dynamic compiles pattern and binds it to the handler bridge.
// optionsJSON is the SPEC_FULL.md §5 widening: an empty string means no
// options (fully backward compatible with spec §6's table); a non-empty
// string is a JSON object decoded into routetable.RouteOptions. Returns
// 1 on success, 0 for a malformed pattern (spec §4.1).
//
//export register_dynamic
func register_dynamic(method, pattern, handlerName *C.char, ttlSeconds C.int, optionsJSON *C.char) C.int {
	e := engineInstance()

	var opts routetable.RouteOptions
	if raw := C.GoString(optionsJSON); raw != "" {
		var parsed map[string]any
		if err := bridgeJSON.Unmarshal([]byte(raw), &parsed); err != nil {
			e.Logger().Error("register_dynamic: malformed options JSON", "err", err)
			return 0
		}
		decoded, err := bridge.DecodeRouteOptions(parsed)
		if err != nil {
			e.Logger().Error("register_dynamic: decoding options", "err", err)
			return 0
		}
		opts = decoded
	}

	err := e.RegisterDynamic(C.GoString(method), C.GoString(pattern), C.GoString(handlerName), int(ttlSeconds), opts)
	if err != nil {
		e.Logger().Error("register_dynamic: rejected pattern", "pattern", C.GoString(pattern), "err", err)
		return 0
	}
	return 1
}

// precompile installs the engine's built-in static routes (there are
// none beyond what the host registers — spec §6 names this for parity
// with the reference design's bundled health/docs routes, which are
// out of scope per spec §1) and returns how many it added.
//
//export precompile
func precompile() C.int {
	_ = engineInstance().Precompile()
	return 0
}

// start_server blocks, serving fasthttp traffic on host:port through the
// engine's three-tier dispatcher. It returns 0 only if the listener
// stops with a nil error (spec §6); any other outcome returns 1. There
// is no exported stop function in spec §6's table, so in practice this
// call does not return during normal operation.
//
//export start_server
func start_server(host *C.char, port C.int) C.int {
	e := engineInstance()
	addr := fmt.Sprintf("%s:%d", C.GoString(host), int(port))
	if err := fasthttp.ListenAndServe(addr, e.ServeFastHTTP); err != nil {
		e.Logger().Error("start_server: listener stopped", "addr", addr, "err", err)
		return 1
	}
	return 0
}

// get_performance_stats returns a malloc'd JSON C-string snapshot of the
// atomic counters (spec §4.6). The caller owns the returned pointer and
// must release it with free_cstring — a companion export this codebase
// adds because the cgo call boundary, unlike the in-process Go API,
// has no garbage collector on the C side to reclaim it.
//
//export get_performance_stats
func get_performance_stats() *C.char {
	snap := engineInstance().GetPerformanceStats()
	body, err := snap.JSON()
	if err != nil {
		return C.CString(`{"error":"stats_encoding_failed"}`)
	}
	return C.CString(string(body))
}

// free_cstring releases a string previously returned by
// get_performance_stats. Not part of spec §6's table; added because cgo
// callers need an explicit release path for Go-allocated C strings.
//
//export free_cstring
func free_cstring(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// clear_cache empties the response cache unconditionally (spec §4.3).
// Always returns 1: the operation has no failure mode.
//
//export clear_cache
func clear_cache() C.int {
	engineInstance().ClearCache()
	return 1
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func main() {}
