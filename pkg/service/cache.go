// Package service implements the business logic for the counted page cache.
package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rwool/pagecache/pkg/service/keyvalue"
)

// CacheTTL is the lifetime of every entry written through an ExpiringCache.
const CacheTTL = 10 * time.Second

// ExpiringCache writes values into a key value store with a fixed time to
// live. It keeps no state of its own.
type ExpiringCache struct {
	kv keyvalue.KeyValue
}

// NewExpiringCache returns an ExpiringCache backed by kv.
func NewExpiringCache(kv keyvalue.KeyValue) *ExpiringCache {
	if kv == nil {
		panic("nil key value store")
	}
	return &ExpiringCache{kv: kv}
}

// Store writes value under a freshly generated random key and returns that
// key.
//
// value must be a string, []byte, int, int32, int64, float32 or float64.
func (c *ExpiringCache) Store(ctx context.Context, value interface{}) (string, error) {
	data, err := encodeValue(value)
	if err != nil {
		return "", err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "unable to generate cache key")
	}
	key := id.String()
	if err := c.store(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Put writes value under key with the same fixed time to live as Store.
func (c *ExpiringCache) Put(ctx context.Context, key string, value interface{}) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	return c.store(ctx, key, data)
}

func (c *ExpiringCache) store(ctx context.Context, key string, data []byte) error {
	if err := c.kv.Store(ctx, key, data, CacheTTL); err != nil {
		return &StoreFailure{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Retrieve reads the value stored under key. Missing and expired entries are
// reported with found set to false.
func (c *ExpiringCache) Retrieve(ctx context.Context, key string) (data []byte, found bool, err error) {
	data, found, err = c.kv.Retrieve(ctx, key)
	if err != nil {
		return nil, false, &StoreFailure{Op: "get", Key: key, Err: err}
	}
	return data, found, nil
}

// Flush empties the whole store, counters included. It is meant to be called
// once while the owning process sets up.
func (c *ExpiringCache) Flush(ctx context.Context) error {
	if err := c.kv.Flush(ctx); err != nil {
		return &StoreFailure{Op: "flush", Err: err}
	}
	return nil
}

// encodeValue converts value to the bytes written to the store. Numbers use
// their shortest form, with an exponent for large floats.
func encodeValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case float32:
		return []byte(strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case float64:
		return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
	default:
		return nil, errors.Errorf("unsupported cache value type %T", value)
	}
}
