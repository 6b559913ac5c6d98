package performance

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/sufastgo/sufast/engine"
	"github.com/sufastgo/sufast/routetable"
)

// BenchmarkFastHTTP_StaticHit tests the static tier's ServeFastHTTP path.
func BenchmarkFastHTTP_StaticHit(b *testing.B) {
	e := engine.New(engine.Config{})
	e.RegisterStatic("GET", "/ping", []byte("pong"), http.StatusOK, "text/plain")

	handler := e.ServeFastHTTP

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetRequestURI("/ping")
		ctx.Request.Header.SetMethod("GET")

		for pb.Next() {
			ctx.Response.Reset()
			ctx.Request.SetRequestURI("/ping")
			ctx.Request.Header.SetMethod("GET")

			handler(ctx)
		}
	})
}

// BenchmarkFastHTTP_DynamicJSON tests the dynamic tier's ServeFastHTTP
// path, crossing the handler bridge on every request.
func BenchmarkFastHTTP_DynamicJSON(b *testing.B) {
	e := engine.New(engine.Config{})
	e.InstallHandler(echoHandler(b, []byte(`{"message":"hello world","status":"ok","count":42}`), http.StatusOK))
	if err := e.RegisterDynamic("GET", "/json", "json_handler", 0, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	handler := e.ServeFastHTTP

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		ctx := &fasthttp.RequestCtx{}

		for pb.Next() {
			ctx.Response.Reset()
			ctx.Request.SetRequestURI("/json")
			ctx.Request.Header.SetMethod("GET")

			handler(ctx)
		}
	})
}

// BenchmarkComparison_NetHTTP_vs_FastHTTP compares both transport
// entrypoints side by side against the same static route.
func BenchmarkComparison_NetHTTP_vs_FastHTTP(b *testing.B) {
	e := engine.New(engine.Config{})
	e.RegisterStatic("GET", "/ping", []byte("pong"), http.StatusOK, "text/plain")

	b.Run("NetHTTP", func(b *testing.B) {
		req := &http.Request{}
		req.Method = "GET"
		req.URL = &url.URL{Path: "/ping"}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			w := &mockResponseWriter{}
			e.ServeHTTP(w, req)
		}
	})

	b.Run("FastHTTP", func(b *testing.B) {
		handler := e.ServeFastHTTP

		b.ResetTimer()
		b.ReportAllocs()

		b.RunParallel(func(pb *testing.PB) {
			ctx := &fasthttp.RequestCtx{}

			for pb.Next() {
				ctx.Response.Reset()
				ctx.Request.SetRequestURI("/ping")
				ctx.Request.Header.SetMethod("GET")

				handler(ctx)
			}
		})
	})
}

// mockResponseWriter is a minimal response writer for benchmarking.
type mockResponseWriter struct {
	headers http.Header
	status  int
	written int
}

func (w *mockResponseWriter) Header() http.Header {
	if w.headers == nil {
		w.headers = make(http.Header)
	}
	return w.headers
}

func (w *mockResponseWriter) Write(data []byte) (int, error) {
	w.written += len(data)
	return len(data), nil
}

func (w *mockResponseWriter) WriteHeader(status int) {
	w.status = status
}

// BenchmarkFastHTTP_HighPressure tests performance under high
// concurrency across a static and a dynamic route.
func BenchmarkFastHTTP_HighPressure(b *testing.B) {
	e := engine.New(engine.Config{})
	e.RegisterStatic("GET", "/ping", []byte("pong"), http.StatusOK, "text/plain")
	e.InstallHandler(echoHandler(b, []byte(`{"message":"hello world","status":"ok","count":42}`), http.StatusOK))
	if err := e.RegisterDynamic("GET", "/json", "json_handler", 0, routetable.RouteOptions{}); err != nil {
		b.Fatal(err)
	}

	handler := e.ServeFastHTTP

	b.ResetTimer()
	b.ReportAllocs()

	b.SetParallelism(100)

	b.RunParallel(func(pb *testing.PB) {
		ctx := &fasthttp.RequestCtx{}
		paths := []string{"/ping", "/json"}
		pathIndex := 0

		for pb.Next() {
			ctx.Response.Reset()
			ctx.Request.SetRequestURI(paths[pathIndex%len(paths)])
			ctx.Request.Header.SetMethod("GET")

			handler(ctx)

			pathIndex++
		}
	})
}
