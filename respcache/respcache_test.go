package respcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutThenGetHit(t *testing.T) {
	c := New(Config{})
	now := time.Unix(1_700_000_000, 0)
	key := Key{Method: "GET", Path: "/users/1"}

	c.Put(key, Entry{Body: []byte(`{"id":1}`), Status: 200, ContentType: "application/json"}, 5*time.Second, now)

	got, ok := c.Get(key, now.Add(1*time.Second))
	require.True(t, ok)
	assert.Equal(t, []byte(`{"id":1}`), got.Body)
	assert.Equal(t, 200, got.Status)
}

func TestGetExpiredEntryIsMissAndEvicted(t *testing.T) {
	c := New(Config{})
	now := time.Unix(1_700_000_000, 0)
	key := Key{Method: "GET", Path: "/users/1"}

	c.Put(key, Entry{Body: []byte("stale")}, 1*time.Second, now)
	require.Equal(t, 1, c.Len())

	_, ok := c.Get(key, now.Add(2*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be evicted lazily on read")
}

func TestGetMissingKey(t *testing.T) {
	c := New(Config{})
	_, ok := c.Get(Key{Method: "GET", Path: "/nope"}, time.Unix(0, 0))
	assert.False(t, ok)
}

func TestQueryStringIgnoredByKey(t *testing.T) {
	// Key carries no query component at all, so two requests differing
	// only in query string necessarily share one cache slot.
	k1 := Key{Method: "GET", Path: "/search"}
	k2 := Key{Method: "GET", Path: "/search"}
	assert.Equal(t, k1, k2)
}

func TestPutEvictsWhenAtCapacity(t *testing.T) {
	c := New(Config{MaxEntries: 2})
	now := time.Unix(1_700_000_000, 0)

	c.Put(Key{Method: "GET", Path: "/a"}, Entry{Body: []byte("a")}, time.Minute, now)
	c.Put(Key{Method: "GET", Path: "/b"}, Entry{Body: []byte("b")}, time.Minute, now)
	assert.Equal(t, 2, c.Len())

	c.Put(Key{Method: "GET", Path: "/c"}, Entry{Body: []byte("c")}, time.Minute, now)
	assert.Equal(t, 2, c.Len(), "cache must stay within its configured bound")

	got, ok := c.Get(Key{Method: "GET", Path: "/c"}, now)
	require.True(t, ok)
	assert.Equal(t, []byte("c"), got.Body)
}

func TestClearEmptiesCache(t *testing.T) {
	c := New(Config{})
	now := time.Unix(1_700_000_000, 0)
	c.Put(Key{Method: "GET", Path: "/a"}, Entry{Body: []byte("a")}, time.Minute, now)
	c.Put(Key{Method: "GET", Path: "/b"}, Entry{Body: []byte("b")}, time.Minute, now)
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestPutOverwritesExistingKey(t *testing.T) {
	c := New(Config{})
	now := time.Unix(1_700_000_000, 0)
	key := Key{Method: "GET", Path: "/a"}

	c.Put(key, Entry{Body: []byte("first")}, time.Minute, now)
	c.Put(key, Entry{Body: []byte("second")}, time.Minute, now)

	got, ok := c.Get(key, now)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got.Body)
}
