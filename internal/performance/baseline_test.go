package performance

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/sufastgo/sufast/bridge"
	"github.com/sufastgo/sufast/engine"
	"github.com/sufastgo/sufast/routetable"
)

var json = jsoniter.ConfigFastest

func echoHandler(t *testing.B, body []byte, status int) bridge.Handler {
	return func(reqJSON []byte) ([]byte, error) {
		return marshalResponse(t, bridge.Response{Status: status, ContentType: "application/json", Body: body})
	}
}

func marshalResponse(t *testing.B, resp bridge.Response) ([]byte, error) {
	t.Helper()
	return json.Marshal(resp)
}

// BenchmarkBaseline_StaticHit tests the static tier, the fastest path:
// no pattern match, no cache probe, no bridge call.
func BenchmarkBaseline_StaticHit(b *testing.B) {
	e := engine.New(engine.Config{})
	e.RegisterStatic("GET", "/ping", []byte("pong"), http.StatusOK, "text/plain")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}

// BenchmarkBaseline_DynamicJSON tests a dynamic route with no caching,
// every request crossing the handler bridge.
func BenchmarkBaseline_DynamicJSON(b *testing.B) {
	e := engine.New(engine.Config{})
	e.InstallHandler(echoHandler(b, []byte(`{"message":"hello world","status":"ok","count":42}`), http.StatusOK))
	if err := e.RegisterDynamic("GET", "/json", "json_handler", 0, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/json", nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}

// BenchmarkBaseline_PathParams tests path parameter extraction through
// the dynamic tier's pattern matcher.
func BenchmarkBaseline_PathParams(b *testing.B) {
	e := engine.New(engine.Config{})
	e.InstallHandler(echoHandler(b, []byte(`{"userId":"123","postId":"456"}`), http.StatusOK))
	if err := e.RegisterDynamic("GET", "/users/{id}/posts/{postId}", "posts_handler", 0, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/123/posts/456", nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}

// BenchmarkBaseline_CachedHit tests the response cache tier: a warm-up
// request before the timer starts crosses the bridge, and all b.N timed
// requests are served from the TTL cache.
func BenchmarkBaseline_CachedHit(b *testing.B) {
	e := engine.New(engine.Config{})
	e.InstallHandler(echoHandler(b, []byte(`{"query":"sufast","limit":20,"offset":10}`), http.StatusOK))
	if err := e.RegisterDynamic("GET", "/search", "search_handler", 60, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/search?q=sufast&limit=20&offset=10", nil)
	// Warm the cache.
	e.ServeHTTP(httptest.NewRecorder(), req)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}

// BenchmarkBaseline_Middleware tests dispatch-wrapping middleware overhead
// around the bridge call (engine.Use, SPEC_FULL.md §4's supplement).
func BenchmarkBaseline_Middleware(b *testing.B) {
	e := engine.New(engine.Config{})
	e.Use(func(next engine.DispatchFunc) engine.DispatchFunc {
		return func(req bridge.Request) (bridge.Response, error) {
			req.Headers["X-Custom"] = "value"
			return next(req)
		}
	})
	e.InstallHandler(echoHandler(b, []byte("middleware test"), http.StatusOK))
	if err := e.RegisterDynamic("GET", "/middleware", "mw_handler", 0, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/middleware", nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}

// BenchmarkBaseline_NotFound tests the fall-through-to-404 path, the
// slowest classification outcome (it walks every tier before failing).
func BenchmarkBaseline_NotFound(b *testing.B) {
	e := engine.New(engine.Config{})
	e.RegisterStatic("GET", "/ping", []byte("pong"), http.StatusOK, "text/plain")

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}

// BenchmarkBaseline_LargeJSON tests performance with a larger dynamic
// response body crossing the bridge.
func BenchmarkBaseline_LargeJSON(b *testing.B) {
	data := make(map[string]string, 100)
	for i := 0; i < 100; i++ {
		data[fmt.Sprintf("field_%d", i)] = fmt.Sprintf("value_%d", i)
	}
	body, err := json.Marshal(data)
	if err != nil {
		b.Fatal(err)
	}

	e := engine.New(engine.Config{})
	e.InstallHandler(echoHandler(b, body, http.StatusOK))
	if err := e.RegisterDynamic("GET", "/large", "large_handler", 0, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/large", nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
}
