package service

import "fmt"

// StoreFailure is returned when the key value store is unreachable or rejects
// an operation.
type StoreFailure struct {
	Op  string
	Key string
	Err error
}

func (s *StoreFailure) Error() string {
	return fmt.Sprintf("store %s %q: %s", s.Op, s.Key, s.Err)
}

// Cause returns the underlying store error.
func (s *StoreFailure) Cause() error { return s.Err }

// FetchFailure is returned when the underlying resource fetch fails, either
// with a transport error or a non-success status.
type FetchFailure struct {
	ID  string
	Err error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("fetch %q: %s", f.ID, f.Err)
}

// Cause returns the underlying fetch error.
func (f *FetchFailure) Cause() error { return f.Err }

type causer interface {
	Cause() error
}

// IsStoreFailure reports whether err, or any error it wraps, is a
// StoreFailure.
func IsStoreFailure(err error) bool {
	return findInChain(err, func(e error) bool {
		_, ok := e.(*StoreFailure)
		return ok
	})
}

// IsFetchFailure reports whether err, or any error it wraps, is a
// FetchFailure.
func IsFetchFailure(err error) bool {
	return findInChain(err, func(e error) bool {
		_, ok := e.(*FetchFailure)
		return ok
	})
}

func findInChain(err error, match func(error) bool) bool {
	for err != nil {
		if match(err) {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}
