// Package http exposes the fetch service endpoints over HTTP.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	gohttp "net/http"

	kitendpoint "github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"

	"github.com/rwool/pagecache/pkg/endpoint"
	"github.com/rwool/pagecache/pkg/service"

	"github.com/go-kit/kit/transport/http"
)

// NewAPIHTTPHandler returns a handler that makes the fetch service endpoints
// available via HTTP.
//
// Routes are GET /page?url=... for content and GET /count?url=... for access
// counts. options is keyed by endpoint name, "FetchResource" or "AccessCount".
func NewAPIHTTPHandler(endpoints endpoint.Endpoints, options map[string][]http.ServerOption) gohttp.Handler {
	if options == nil {
		options = make(map[string][]http.ServerOption)
	}
	m := gohttp.NewServeMux()
	makeGetHandler(m, "/page", endpoints.FetchResource, encodeFetchResourceResponse, options["FetchResource"]...)
	makeGetHandler(m, "/count", endpoints.AccessCount, encodeAccessCountResponse, options["AccessCount"]...)
	return m
}

type errorResponse struct {
	Error string
}

// badRequest marks errors caused by the client's request.
type badRequest struct {
	error
}

func statusFor(err error) int {
	switch {
	case service.IsFetchFailure(err):
		return gohttp.StatusBadGateway
	case service.IsStoreFailure(err):
		return gohttp.StatusServiceUnavailable
	}
	if _, ok := errors.Cause(err).(badRequest); ok {
		return gohttp.StatusBadRequest
	}
	return gohttp.StatusInternalServerError
}

func encodeError(_ context.Context, err error, w gohttp.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func decodeResourceRequest(_ context.Context, req *gohttp.Request) (interface{}, error) {
	id := req.URL.Query().Get("url")
	if id == "" {
		return nil, badRequest{errors.New("missing url parameter")}
	}
	return endpoint.ResourceRequest{ID: id}, nil
}

func encodeFetchResourceResponse(ctx context.Context, w gohttp.ResponseWriter, r interface{}) error {
	if v, ok := r.(kitendpoint.Failer); ok && v.Failed() != nil {
		encodeError(ctx, v.Failed(), w)
		return nil
	}
	resp := r.(endpoint.FetchResourceResponse)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(resp.Content))
	return errors.WithStack(err)
}

func encodeAccessCountResponse(ctx context.Context, w gohttp.ResponseWriter, r interface{}) error {
	if v, ok := r.(kitendpoint.Failer); ok && v.Failed() != nil {
		encodeError(ctx, v.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(r)
	return errors.WithStack(err)
}

func makeGetHandler(m *gohttp.ServeMux, path string, e kitendpoint.Endpoint, enc http.EncodeResponseFunc, options ...http.ServerOption) {
	options = append([]http.ServerOption{http.ServerErrorEncoder(encodeError)}, options...)
	handler := http.NewServer(e,
		decodeResourceRequest,
		enc,
		options...)
	hf := func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if r.Method != gohttp.MethodGet {
			w.WriteHeader(gohttp.StatusMethodNotAllowed)
			_, _ = fmt.Fprintf(w, "Invalid request method %s", r.Method)
			return
		}
		handler.ServeHTTP(w, r)
	}
	m.Handle(path, gohttp.HandlerFunc(hf))
}
