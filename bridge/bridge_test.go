package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchBeforeInstallReturnsNoHandler(t *testing.T) {
	b := New()
	resp, err := b.Dispatch(Request{Method: "GET", Path: "/x"})
	assert.ErrorIs(t, err, ErrNoHandler)
	assert.Equal(t, 500, resp.Status)
}

func TestInstallIsOneShot(t *testing.T) {
	b := New()
	assert.True(t, b.Install(func(reqJSON []byte) ([]byte, error) {
		return []byte(`{"status":200,"body":"Zmlyc3Q="}`), nil
	}))
	assert.False(t, b.Install(func(reqJSON []byte) ([]byte, error) {
		return []byte(`{"status":200,"body":"c2Vjb25k"}`), nil
	}))

	resp, err := b.Dispatch(Request{Method: "GET", Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestDispatchEchoesParamsAndBody(t *testing.T) {
	b := New()
	var seen Request
	b.Install(func(reqJSON []byte) ([]byte, error) {
		require.NoError(t, json.Unmarshal(reqJSON, &seen))
		return json.Marshal(Response{Status: 200, ContentType: "text/plain", Body: []byte("ok")})
	})

	resp, err := b.Dispatch(Request{
		Method: "GET",
		Path:   "/users/42",
		Params: map[string]string{"id": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", seen.Params["id"])
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, []byte("ok"), resp.Body)
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	b := New()
	b.Install(func(reqJSON []byte) ([]byte, error) {
		panic("boom")
	})

	resp, err := b.Dispatch(Request{Method: "GET", Path: "/x"})
	assert.ErrorIs(t, err, ErrHandlerPanicked)
	assert.Equal(t, 500, resp.Status)
	assert.Contains(t, string(resp.Body), "handler_failed")
}

func TestDispatchHandlerErrorBecomes500(t *testing.T) {
	b := New()
	b.Install(func(reqJSON []byte) ([]byte, error) {
		return nil, errors.New("transport broke")
	})

	resp, err := b.Dispatch(Request{Method: "GET", Path: "/x"})
	require.Error(t, err)
	assert.Equal(t, 500, resp.Status)
}

func TestDispatchMalformedResponseJSON(t *testing.T) {
	b := New()
	b.Install(func(reqJSON []byte) ([]byte, error) {
		return []byte("not json"), nil
	})

	resp, err := b.Dispatch(Request{Method: "GET", Path: "/x"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, 500, resp.Status)
}

func TestDispatchZeroStatusIsMalformed(t *testing.T) {
	b := New()
	b.Install(func(reqJSON []byte) ([]byte, error) {
		return json.Marshal(Response{Body: []byte("x")})
	})

	_, err := b.Dispatch(Request{Method: "GET", Path: "/x"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeRouteOptionsKnownAndExtra(t *testing.T) {
	raw := map[string]any{
		"require_auth":   true,
		"rate_limit_rps": 10,
		"tags":           []any{"admin", "beta"},
		"custom_field":   "value",
	}
	opts, err := DecodeRouteOptions(raw)
	require.NoError(t, err)
	assert.True(t, opts.RequireAuth)
	assert.Equal(t, 10, opts.RateLimitRPS)
	assert.Equal(t, []string{"admin", "beta"}, opts.Tags)
	assert.Equal(t, "value", opts.Extra["custom_field"])
}

func TestDecodeRouteOptionsEmpty(t *testing.T) {
	opts, err := DecodeRouteOptions(map[string]any{})
	require.NoError(t, err)
	assert.False(t, opts.RequireAuth)
	assert.Empty(t, opts.Tags)
}
