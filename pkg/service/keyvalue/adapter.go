package keyvalue

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/go-redis/redis"
)

// NewRedisAdapter creates a Redis client that supports storing and retrieving
// key value pairs.
//
// The client is shared by every caller; go-redis pools connections internally
// so no additional locking is done here.
func NewRedisAdapter(c *redis.Client) *RedisAdapter {
	if c == nil {
		panic("nil key value client")
	}
	return &RedisAdapter{c: c}
}

// Ensure RedisAdapter implements the KeyValue interface.
var _ KeyValue = (*RedisAdapter)(nil)

// RedisAdapter adapts a Redis client to support the KeyValue interface.
type RedisAdapter struct {
	c *redis.Client
}

// Store stores a key value pair in Redis.
//
// If expiration is set to 0, then the key will never expire.
func (r *RedisAdapter) Store(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	if len(key) == 0 {
		return errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	err := client.Set(key, data, expiration).Err()
	return errors.Wrapf(err, "error storing value for key %q in Redis", key)
}

// Retrieve retrieves a value for a given key from Redis.
func (r *RedisAdapter) Retrieve(ctx context.Context, key string) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	v, err := client.Get(key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "unable to retrieve value for key %q from Redis", key)
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

// GetCounter gets the current value of a counter.
//
// A counter that does not exist yet has the value 0.
func (r *RedisAdapter) GetCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	current, err := client.Get(key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "failed to get number for key: %q", key)
	}
	v, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected format or not a number for key %q", key)
	}
	return v, nil
}

// IncrementCounter increments the value with the given key and returns the
// incremented value.
//
// If the key does not exist, it will be initialized to 0 and incremented.
// INCR is atomic on the server, so concurrent callers never lose an update.
func (r *RedisAdapter) IncrementCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	v, err := client.Incr(key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to increment value for key %q", key)
	}
	return v, nil
}

// Flush removes all keys in the currently selected Redis database.
func (r *RedisAdapter) Flush(ctx context.Context) error {
	client := r.c.WithContext(ctx)
	err := client.FlushDB().Err()
	return errors.Wrap(err, "failed to flush Redis database")
}
