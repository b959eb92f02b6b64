package resource

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/url"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Ensure HTTPAdapter implements the Fetcher interface.
var _ Fetcher = (*HTTPAdapter)(nil)

// HTTPAdapter fetches resources with HTTP GET requests.
type HTTPAdapter struct {
	c *http.Client
}

// NewHTTPAdapter creates an HTTPAdapter that sends requests with c.
//
// Timeouts and redirect policy are those of c. If c is nil,
// http.DefaultClient is used.
func NewHTTPAdapter(c *http.Client) *HTTPAdapter {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPAdapter{c: c}
}

// Fetch performs a GET request for address and returns the decoded body.
func (h *HTTPAdapter) Fetch(ctx context.Context, address string) (Response, error) {
	u, err := url.Parse(address)
	if err != nil {
		return Response{}, errors.Wrapf(err, "invalid resource address %q", address)
	}
	if !u.IsAbs() || u.Host == "" {
		return Response{}, errors.Errorf("resource address %q is not absolute", address)
	}

	client := httptransport.NewClient(
		http.MethodGet,
		u,
		encodeFetchRequest,
		decodeFetchResponse(address),
		httptransport.SetClient(h.c),
	)
	r, err := client.Endpoint()(ctx, nil)
	if err != nil {
		return Response{}, errors.WithStack(err)
	}
	return r.(Response), nil
}

func encodeFetchRequest(_ context.Context, req *http.Request, _ interface{}) error {
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.8")
	return nil
}

// decodeFetchResponse rejects non-success statuses before reading the body and
// converts the body to UTF-8 according to its Content-Type.
func decodeFetchResponse(address string) httptransport.DecodeResponseFunc {
	return func(_ context.Context, resp *http.Response) (interface{}, error) {
		if !IsSuccess(resp.StatusCode) {
			return nil, &StatusError{Address: address, StatusCode: resp.StatusCode}
		}
		r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to determine encoding of %q", address)
		}
		body, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read body of %q", address)
		}
		return Response{
			StatusCode: resp.StatusCode,
			Content:    string(body),
		}, nil
	}
}
