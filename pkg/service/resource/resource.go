// Package resource implements support for fetching remote resources by their
// address.
package resource

import (
	"context"
	"fmt"
)

// Fetcher wraps the method for retrieving the content of a remote resource.
//
// Fetch returns an error for transport failures and for any response outside
// the 2xx range. It never retries.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (Response, error)
}

// Response is a successfully fetched resource.
type Response struct {
	StatusCode int
	// Content is the body decoded to UTF-8.
	Content string
}

// StatusError is returned when the remote end answers with a non-success
// status code.
type StatusError struct {
	Address    string
	StatusCode int
}

func (s *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %q", s.StatusCode, s.Address)
}

// IsSuccess reports whether code is in the success range.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
