package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwool/pagecache/pkg/internal/keyvaluemock"
	"github.com/rwool/pagecache/pkg/service"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestExpiringCacheRoundTrip(t *testing.T) {
	t.Parallel()
	kv := keyvaluemock.New()
	cache := service.NewExpiringCache(kv)
	ctx := context.Background()

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"String", "hello", "hello"},
		{"Bytes", []byte{0, 1, 2, 0xff}, "\x00\x01\x02\xff"},
		{"Int", 42, "42"},
		{"Int64", int64(-7), "-7"},
		{"Float", 3.25, "3.25"},
		{"Large Float", 1e300, "1e+300"},
		{"Float32", float32(0.5), "0.5"},
		{"Empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			key, err := cache.Store(ctx, tt.value)
			require.NoError(t, err, "Storing should succeed.")
			require.NotEmpty(t, key)

			got, found, err := cache.Retrieve(ctx, key)
			require.NoError(t, err)
			require.True(t, found, "Value should be found before expiry.")
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExpiringCacheKeysAreUnique(t *testing.T) {
	t.Parallel()
	cache := service.NewExpiringCache(keyvaluemock.New())
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key, err := cache.Store(context.Background(), i)
		require.NoError(t, err)
		_, dup := seen[key]
		require.False(t, dup, "Keys should not repeat.")
		seen[key] = struct{}{}
	}
}

func TestExpiringCacheExpiry(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	kv := keyvaluemock.NewWithClock(clock.Now)
	cache := service.NewExpiringCache(kv)
	ctx := context.Background()

	key, err := cache.Store(ctx, "soon gone")
	require.NoError(t, err)

	clock.Advance(service.CacheTTL - time.Millisecond)
	_, found, err := cache.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.True(t, found, "Value should be live just before the TTL.")

	clock.Advance(time.Millisecond)
	data, found, err := cache.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "Value should be absent once the TTL elapses.")
	assert.Nil(t, data, "No stale data should be returned.")
}

func TestExpiringCacheErrors(t *testing.T) {
	t.Parallel()
	kv := keyvaluemock.New()
	cache := service.NewExpiringCache(kv)
	ctx := context.Background()

	_, err := cache.Store(ctx, struct{}{})
	require.Error(t, err, "Unsupported types should be rejected.")
	assert.False(t, service.IsStoreFailure(err), "A bad argument is not a store failure.")
	assert.Equal(t, 0, kv.Calls("Store"), "Nothing should be written.")

	kv.FailWith(errors.New("connection refused"))
	_, err = cache.Store(ctx, "x")
	assert.True(t, service.IsStoreFailure(err), "Write errors should be store failures.")

	_, _, err = cache.Retrieve(ctx, "x")
	assert.True(t, service.IsStoreFailure(err), "Read errors should be store failures.")

	err = cache.Flush(ctx)
	assert.True(t, service.IsStoreFailure(err), "Flush errors should be store failures.")
}
