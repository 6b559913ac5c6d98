// Command benchmark starts the engine standalone, wired the way a
// host process would wire it through the C-ABI, for manual load
// testing against both transports (see cmd/libsufast for the real
// FFI surface; this drives engine.Engine directly as a Go program).
package main

import (
	"log"
	"net/http"
	"runtime"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/sufastgo/sufast/bridge"
	"github.com/sufastgo/sufast/engine"
	"github.com/sufastgo/sufast/routetable"
)

var json = jsoniter.ConfigFastest

func main() {
	e := engine.New(engine.Config{
		MaxRequestLineBytes: 8 * 1024,
		MaxBodyBytes:        1 << 20,
		MaxCacheEntries:     1000,
	})

	e.RegisterStatic("GET", "/ping", []byte("pong"), http.StatusOK, "text/plain")

	e.InstallHandler(func(reqJSON []byte) ([]byte, error) {
		var req bridge.Request
		if err := json.Unmarshal(reqJSON, &req); err != nil {
			return nil, err
		}
		var resp bridge.Response
		switch req.Path {
		case "/json":
			resp = jsonResponse(map[string]any{"message": "hello world", "status": "ok", "count": 42})
		case "/health":
			resp = jsonResponse(map[string]any{"status": "healthy", "timestamp": time.Now().Unix(), "version": "1.0.0"})
		default:
			resp = jsonResponse(map[string]any{"id": req.Params["id"]})
		}
		return json.Marshal(resp)
	})

	if err := e.RegisterDynamic("GET", "/json", "json_handler", 0, routetable.RouteOptions{}); err != nil {
		log.Fatalf("register /json: %v", err)
	}
	if err := e.RegisterDynamic("GET", "/health", "health_handler", 5, routetable.RouteOptions{}); err != nil {
		log.Fatalf("register /health: %v", err)
	}
	if err := e.RegisterDynamic("GET", "/users/{id}", "user_handler", 60, routetable.RouteOptions{}); err != nil {
		log.Fatalf("register /users/{id}: %v", err)
	}

	log.Printf("Starting servers with %d CPU cores", runtime.NumCPU())

	go func() {
		log.Println("FastHTTP server starting on :8081")
		if err := fasthttp.ListenAndServe(":8081", e.ServeFastHTTP); err != nil {
			log.Fatalf("FastHTTP server failed: %v", err)
		}
	}()

	log.Println("net/http server starting on :8080")
	if err := http.ListenAndServe(":8080", e); err != nil {
		log.Fatalf("net/http server failed: %v", err)
	}
}

func jsonResponse(v any) bridge.Response {
	body, err := json.Marshal(v)
	if err != nil {
		return bridge.Response{Status: http.StatusInternalServerError, ContentType: "application/json",
			Body: []byte(`{"error":"handler_failed"}`)}
	}
	return bridge.Response{Status: http.StatusOK, ContentType: "application/json", Body: body}
}
