package service

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log"

	"github.com/rwool/pagecache/pkg/service/keyvalue"
	"github.com/rwool/pagecache/pkg/service/resource"
)

const pageKeyPrefix = "page:"

// FetchService wraps the set of methods for retrieving counted, cached
// resources.
type FetchService interface {
	// FetchResource returns the content of the resource identified by id,
	// serving it from the cache when a live entry exists.
	FetchResource(ctx context.Context, id string) (string, error)
	// AccessCount returns how many times id has been requested.
	AccessCount(ctx context.Context, id string) (int64, error)
}

// FetchServiceConfig contains the dependencies of a FetchService.
type FetchServiceConfig struct {
	KeyVal  keyvalue.KeyValue
	Fetcher resource.Fetcher
	Log     log.Logger
}

// NewFetchService returns a FetchService.
func NewFetchService(conf FetchServiceConfig) FetchService {
	return newFetchService(conf)
}

func newFetchService(conf FetchServiceConfig) *fetchService {
	if conf.Fetcher == nil {
		panic("nil resource fetcher")
	}
	l := conf.Log
	if l == nil {
		l = log.NewNopLogger()
	}
	return &fetchService{
		cache:   NewExpiringCache(conf.KeyVal),
		counter: NewAccessCounter(conf.KeyVal),
		fetcher: conf.Fetcher,
		log:     l,
	}
}

type fetchService struct {
	cache   *ExpiringCache
	counter *AccessCounter
	fetcher resource.Fetcher
	log     log.Logger
}

// PageKey returns the cache key holding the content for id.
func PageKey(id string) string {
	return pageKeyPrefix + id
}

// FetchResource fetches a resource, counting the access first.
//
// Every call increments the access count, including calls that are later
// served from the cache or that fail. Concurrent misses for the same id may
// each fetch the resource; the last write wins.
func (f *fetchService) FetchResource(ctx context.Context, id string) (string, error) {
	n, err := f.counter.RecordAccess(ctx, id)
	if err != nil {
		return "", err
	}
	_ = f.log.Log("LEVEL", "DEBUG", "MESSAGE", fmt.Sprintf("Access %d for resource", n), "id", id)

	key := PageKey(id)
	cached, found, err := f.cache.Retrieve(ctx, key)
	if err != nil {
		return "", err
	}
	if found {
		_ = f.log.Log("LEVEL", "DEBUG", "MESSAGE", "Cache hit", "id", id)
		return string(cached), nil
	}
	_ = f.log.Log("LEVEL", "DEBUG", "MESSAGE", "Cache miss", "id", id)

	resp, err := f.fetcher.Fetch(ctx, id)
	if err != nil {
		return "", &FetchFailure{ID: id, Err: err}
	}

	// Content is already decoded, so hits and misses return the same text.
	if err := f.cache.Put(ctx, key, resp.Content); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// AccessCount returns how many times id has been requested.
func (f *fetchService) AccessCount(ctx context.Context, id string) (int64, error) {
	return f.counter.Count(ctx, id)
}
