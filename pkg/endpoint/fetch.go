package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/rwool/pagecache/pkg/service"
)

// ResourceRequest names the resource an endpoint operates on.
type ResourceRequest struct {
	ID string
}

// FetchResourceResponse contains the content of a resource and an error to
// indicate a failure in the business logic.
type FetchResourceResponse struct {
	Content string
	e       error
}

// Failed indicates if there was a business logic failure.
func (f FetchResourceResponse) Failed() error {
	return f.e
}

// AccessCountResponse contains the number of recorded accesses for a resource.
type AccessCountResponse struct {
	URL   string `json:"url"`
	Count int64  `json:"count"`
	e     error
}

// Failed indicates if there was a business logic failure.
func (a AccessCountResponse) Failed() error {
	return a.e
}

// Endpoints collects the endpoints of a FetchService.
type Endpoints struct {
	FetchResource endpoint.Endpoint
	AccessCount   endpoint.Endpoint
}

// MakeEndpoints creates all endpoints for s.
func MakeEndpoints(s service.FetchService) Endpoints {
	return Endpoints{
		FetchResource: MakeFetchResourceEndpoint(s),
		AccessCount:   MakeAccessCountEndpoint(s),
	}
}

// MakeFetchResourceEndpoint creates an endpoint for fetching resources.
func MakeFetchResourceEndpoint(s service.FetchService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ResourceRequest)
		content, err := s.FetchResource(ctx, req.ID)
		return FetchResourceResponse{
			Content: content,
			e:       err,
		}, nil
	}
}

// MakeAccessCountEndpoint creates an endpoint for reading access counts.
func MakeAccessCountEndpoint(s service.FetchService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ResourceRequest)
		n, err := s.AccessCount(ctx, req.ID)
		return AccessCountResponse{
			URL:   req.ID,
			Count: n,
			e:     err,
		}, nil
	}
}
