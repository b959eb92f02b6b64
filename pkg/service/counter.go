package service

import (
	"context"

	"github.com/rwool/pagecache/pkg/service/keyvalue"
)

const countKeyPrefix = "count:"

// AccessCounter counts accesses per resource identifier. Counters never
// expire; they live until the store is flushed.
type AccessCounter struct {
	kv keyvalue.KeyValue
}

// NewAccessCounter returns an AccessCounter backed by kv.
func NewAccessCounter(kv keyvalue.KeyValue) *AccessCounter {
	if kv == nil {
		panic("nil key value store")
	}
	return &AccessCounter{kv: kv}
}

// CountKey returns the store key holding the access count for id.
func CountKey(id string) string {
	return countKeyPrefix + id
}

// RecordAccess increments the counter for id and returns the new count.
func (a *AccessCounter) RecordAccess(ctx context.Context, id string) (int64, error) {
	key := CountKey(id)
	n, err := a.kv.IncrementCounter(ctx, key)
	if err != nil {
		return 0, &StoreFailure{Op: "incr", Key: key, Err: err}
	}
	return n, nil
}

// Count returns the number of recorded accesses for id.
func (a *AccessCounter) Count(ctx context.Context, id string) (int64, error) {
	key := CountKey(id)
	n, err := a.kv.GetCounter(ctx, key)
	if err != nil {
		return 0, &StoreFailure{Op: "get", Key: key, Err: err}
	}
	return n, nil
}
