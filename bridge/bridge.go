// Package bridge implements the single process-wide handler slot spec
// §4.4 describes: the cross-language callback a host installs once and
// the dispatch engine invokes for every dynamic-tier request, carried
// over a JSON request/response envelope rather than a typed Go call so
// the same contract works whether the installed handler is a Go
// closure in tests or a C function pointer reached through cgo.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"

	"github.com/sufastgo/sufast/routetable"
)

var json = jsoniter.ConfigFastest

// Request is the envelope the bridge hands the installed handler for
// every dynamic-tier dispatch.
type Request struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// Response is the envelope the handler must return. A zero Status is
// treated as a malformed response, not as "200 implied".
type Response struct {
	Status      int               `json:"status"`
	ContentType string            `json:"content_type,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        []byte            `json:"body,omitempty"`
}

// Handler is the installed callback's shape: it receives the marshaled
// Request envelope and must return a marshaled Response envelope. The
// error return is for transport-level failure (e.g. a cgo call that
// could not reach the host at all); a handler that runs but produces a
// domain-level error response should just marshal that into Response.
type Handler func(reqJSON []byte) (respJSON []byte, err error)

var (
	// ErrNoHandler is returned when Dispatch is called before Install.
	ErrNoHandler = errors.New("bridge: no handler installed")
	// ErrHandlerPanicked is returned when the installed handler panics;
	// the panic is recovered and never escapes Dispatch.
	ErrHandlerPanicked = errors.New("bridge: handler panicked")
	// ErrMalformedResponse is returned when the handler's returned bytes
	// don't decode into a well-formed Response (bad JSON, or status 0).
	ErrMalformedResponse = errors.New("bridge: handler returned a malformed response")
)

// Bridge holds the single process-wide handler slot. The zero value is
// not usable; construct with New.
type Bridge struct {
	once    sync.Once
	handler atomic.Pointer[Handler]
}

// New returns an empty, uninstalled Bridge.
func New() *Bridge { return &Bridge{} }

// Install sets the process-wide handler. It is one-shot: the first call
// wins and installs h; every subsequent call is a no-op and returns
// false, mirroring the spec's "there is no `self`, so there is exactly
// one slot for the whole process" design (spec §4.4).
func (b *Bridge) Install(h Handler) bool {
	installed := false
	b.once.Do(func() {
		b.handler.Store(&h)
		installed = true
	})
	return installed
}

// Installed reports whether a handler has been set.
func (b *Bridge) Installed() bool {
	return b.handler.Load() != nil
}

// Dispatch marshals req, invokes the installed handler with panic
// recovery, and unmarshals its response. Any failure — no handler
// installed, a panic, or a malformed response — is reported as a 500
// Response alongside a sentinel error so the caller can distinguish the
// failure mode (e.g. to bump the right counter).
func (b *Bridge) Dispatch(req Request) (resp Response, err error) {
	hp := b.handler.Load()
	if hp == nil {
		return NoHandlerResponse(), ErrNoHandler
	}

	reqBytes, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return errorResponse(), fmt.Errorf("bridge: marshaling request: %w", marshalErr)
	}

	var respBytes []byte
	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrHandlerPanicked, r)
			}
		}()
		respBytes, callErr = (*hp)(reqBytes)
	}()
	if err != nil {
		return errorResponse(), err
	}
	if callErr != nil {
		return errorResponse(), fmt.Errorf("bridge: handler returned an error: %w", callErr)
	}

	if unmarshalErr := json.Unmarshal(respBytes, &resp); unmarshalErr != nil || resp.Status == 0 {
		return errorResponse(), ErrMalformedResponse
	}
	return resp, nil
}

func errorResponse() Response {
	return Response{
		Status:      500,
		ContentType: "application/json",
		Body:        []byte(`{"error":"handler_failed"}`),
	}
}

// NoHandlerResponse is the fixed 500 body served when Dispatch fails
// with ErrNoHandler, distinct from a handler that ran and failed.
func NoHandlerResponse() Response {
	return Response{
		Status:      500,
		ContentType: "application/json",
		Body:        []byte(`{"error":"no_handler"}`),
	}
}

// DecodeRouteOptions decodes a widened register_dynamic options blob
// (arbitrary JSON object, already unmarshaled into raw) into a
// routetable.RouteOptions, per SPEC_FULL.md §5. Unknown keys are
// collected into Extra rather than rejected.
func DecodeRouteOptions(raw map[string]any) (routetable.RouteOptions, error) {
	var opts routetable.RouteOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, fmt.Errorf("bridge: building options decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return opts, fmt.Errorf("bridge: decoding route options: %w", err)
	}

	known := map[string]bool{"require_auth": true, "rate_limit_rps": true, "tags": true}
	for k, v := range raw {
		if !known[k] {
			if opts.Extra == nil {
				opts.Extra = make(map[string]any)
			}
			opts.Extra[k] = v
		}
	}
	return opts, nil
}
