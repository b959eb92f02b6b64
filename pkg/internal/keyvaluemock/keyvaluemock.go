// Package keyvaluemock provides an in-memory implementation of
// keyvalue.KeyValue.
//
// Intended for testing only.
package keyvaluemock

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rwool/pagecache/pkg/service/keyvalue"
)

// Ensure KeyValueMock implements the KeyValue interface.
var _ keyvalue.KeyValue = (*KeyValueMock)(nil)

// KeyValueMock is a mock implementation of the keyvalue.KeyValue type.
//
// Expiration is evaluated against the mock's clock on every read, so tests can
// move time forward without sleeping.
type KeyValueMock struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	err     error
	calls   map[string]int
}

type entry struct {
	data    []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// New returns a new KeyValueMock that uses the wall clock.
func New() *KeyValueMock {
	return NewWithClock(time.Now)
}

// NewWithClock returns a new KeyValueMock that reads the current time from
// now.
func NewWithClock(now func() time.Time) *KeyValueMock {
	return &KeyValueMock{
		entries: make(map[string]entry),
		now:     now,
		calls:   make(map[string]int),
	}
}

// FailWith makes every following operation return err. A nil err restores
// normal behavior.
func (k *KeyValueMock) FailWith(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.err = err
}

// Calls returns how many times the named operation was invoked.
func (k *KeyValueMock) Calls(op string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls[op]
}

// Has reports whether key holds a live value.
func (k *KeyValueMock) Has(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.lookup(key)
	return ok
}

// begin records the call and must be called with mu held.
func (k *KeyValueMock) begin(ctx context.Context, op string) error {
	k.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.err
}

// lookup must be called with mu held.
func (k *KeyValueMock) lookup(key string) (entry, bool) {
	e, ok := k.entries[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(k.now()) {
		delete(k.entries, key)
		return entry{}, false
	}
	return e, true
}

// Store stores bytes into key.
func (k *KeyValueMock) Store(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.begin(ctx, "Store"); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.New("invalid key")
	}
	e := entry{data: append([]byte{}, data...)}
	if expiration > 0 {
		e.expires = k.now().Add(expiration)
	}
	k.entries[key] = e
	return nil
}

// Retrieve retrieves the bytes for key.
func (k *KeyValueMock) Retrieve(ctx context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.begin(ctx, "Retrieve"); err != nil {
		return nil, false, err
	}
	if len(key) == 0 {
		return nil, false, errors.New("invalid key")
	}
	e, ok := k.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, e.data...), true, nil
}

// GetCounter gets the current value of the counter for key.
func (k *KeyValueMock) GetCounter(ctx context.Context, key string) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.begin(ctx, "GetCounter"); err != nil {
		return 0, err
	}
	return k.counter(key)
}

// IncrementCounter increments the value of the counter for key.
//
// Like Redis INCR, the remaining expiration of the key is kept.
func (k *KeyValueMock) IncrementCounter(ctx context.Context, key string) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.begin(ctx, "IncrementCounter"); err != nil {
		return 0, err
	}
	v, err := k.counter(key)
	if err != nil {
		return 0, err
	}
	v++
	e, _ := k.lookup(key)
	e.data = []byte(strconv.FormatInt(v, 10))
	k.entries[key] = e
	return v, nil
}

// counter must be called with mu held.
func (k *KeyValueMock) counter(key string) (int64, error) {
	if len(key) == 0 {
		return 0, errors.New("invalid key")
	}
	e, ok := k.lookup(key)
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseInt(string(e.data), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected format or not a number for key %q", key)
	}
	return v, nil
}

// Flush removes all keys.
func (k *KeyValueMock) Flush(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.begin(ctx, "Flush"); err != nil {
		return err
	}
	k.entries = make(map[string]entry)
	return nil
}
