package keyvaluemock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwool/pagecache/pkg/internal/keyvaluemock"
)

func TestExpiration(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	kv := keyvaluemock.NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, kv.Store(ctx, "a", []byte("1"), 10*time.Second))
	require.NoError(t, kv.Store(ctx, "b", []byte("2"), 0))

	now = now.Add(9 * time.Second)
	_, found, err := kv.Retrieve(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found, "Key should be live before its expiration.")

	now = now.Add(time.Second)
	_, found, err = kv.Retrieve(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found, "Key should be gone at its expiration.")

	_, found, err = kv.Retrieve(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found, "Key without expiration should persist.")
}

func TestCounterAndFlush(t *testing.T) {
	t.Parallel()
	kv := keyvaluemock.New()
	ctx := context.Background()

	v, err := kv.GetCounter(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	for i := int64(1); i <= 3; i++ {
		v, err = kv.IncrementCounter(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	require.NoError(t, kv.Store(ctx, "text", []byte("abc"), 0))
	_, err = kv.IncrementCounter(ctx, "text")
	assert.Error(t, err, "Incrementing a non-numeric value should fail.")

	_, err = kv.IncrementCounter(ctx, "")
	assert.Error(t, err, "Empty counter keys should be rejected.")
	_, err = kv.GetCounter(ctx, "")
	assert.Error(t, err, "Empty counter keys should be rejected.")

	require.NoError(t, kv.Flush(ctx))
	assert.False(t, kv.Has("c"))
	assert.False(t, kv.Has("text"))
}
