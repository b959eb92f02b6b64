// Package keyvalue implements support for storing and retrieving key value
// pairs and counters in a shared store.
package keyvalue

import (
	"context"
	"time"
)

// KeyValue wraps the set of methods for storing and retrieving data identified
// by a given key.
//
// Expiration is enforced by the store itself. Implementations must be safe for
// concurrent use.
type KeyValue interface {
	// Store writes data under key. An expiration of 0 means the key never
	// expires.
	Store(ctx context.Context, key string, data []byte, expiration time.Duration) error
	// Retrieve reads the data under key. Absent and expired keys are reported
	// with found set to false and a nil error.
	Retrieve(ctx context.Context, key string) (data []byte, found bool, err error)

	// GetCounter returns 0 for a counter that was never incremented.
	GetCounter(ctx context.Context, key string) (int64, error)
	// IncrementCounter atomically increments the counter and returns the new
	// value.
	IncrementCounter(ctx context.Context, key string) (int64, error)

	// Flush removes every key from the store.
	Flush(ctx context.Context) error
}
