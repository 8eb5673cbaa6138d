package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(WithRedisAddr(mr.Addr()), WithRedisPrefix("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func backends(t *testing.T) map[string]Service {
	t.Helper()
	mem := NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	rc, _ := newRedis(t)
	rc2, _ := newRedis(t)
	return map[string]Service{
		"memory":  mem,
		"redis":   rc,
		"layered": NewLayeredCache(rc2),
	}
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k", payload{Name: "AAPL", Score: 1.5}, time.Minute))

			var got payload
			require.NoError(t, c.Get(ctx, "k", &got))
			assert.Equal(t, payload{Name: "AAPL", Score: 1.5}, got)

			require.NoError(t, c.Set(ctx, "s", "raw", 0))
			var s string
			require.NoError(t, c.Get(ctx, "s", &s))
			assert.Equal(t, "raw", s)

			ok, err := c.Exists(ctx, "missing", "k")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, c.Delete(ctx, "k"))
			assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
		})
	}
}

func TestServiceLock(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := c.TryLock(ctx, "scan:lock", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = c.TryLock(ctx, "scan:lock", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Unlock(ctx, "scan:lock"))
			assert.ErrorIs(t, c.Unlock(ctx, "scan:lock"), ErrNotLocked)

			ok, err = c.TryLock(ctx, "scan:lock", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestRedisUnlockLeavesForeignLock(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)

	ok, err := rc.TryLock(ctx, "scan:lock", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// our lease expires and another process takes the lock
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:scan:lock", "someone-else"))

	assert.ErrorIs(t, rc.Unlock(ctx, "scan:lock"), ErrNotLocked)
	v, err := mr.Get("test:scan:lock")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestRedisPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)
	require.NoError(t, rc.Set(ctx, "wt_signals", "x", time.Minute))

	assert.True(t, mr.Exists("test:wt_signals"))
	assert.Equal(t, time.Minute, mr.TTL("test:wt_signals"))

	mr.FastForward(2 * time.Minute)
	var s string
	assert.ErrorIs(t, rc.Get(ctx, "wt_signals", &s), ErrCacheMiss)
}

func TestMemoryExpiryAndEviction(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	var s string
	assert.ErrorIs(t, mc.Get(ctx, "short", &s), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Get(ctx, "a", &s))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &s), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &s))
	assert.Equal(t, "1", s)
}

func TestLayeredServesFromRedisAfterL1Miss(t *testing.T) {
	ctx := context.Background()
	rc, _ := newRedis(t)
	lc := NewLayeredCache(rc, WithLayeredMemoryTTL(time.Minute))

	// written by another process straight into Redis
	require.NoError(t, rc.Set(ctx, "k", payload{Name: "MSFT"}, time.Minute))

	var got payload
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "MSFT", got.Name)

	var raw []byte
	require.NoError(t, lc.memCache.Get(ctx, "k", &raw))
	assert.JSONEq(t, `{"name":"MSFT","score":0}`, string(raw))
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "scan:lock", GenerateKey("scan", "lock"))
	assert.Equal(t, "wt_signals", GenerateKey("wt_signals"))
}
