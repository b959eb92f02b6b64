package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwool/pagecache/pkg/endpoint"
	"github.com/rwool/pagecache/pkg/http"
	"github.com/rwool/pagecache/pkg/service"
)

type stubService struct {
	content string
	count   int64
	err     error
}

func (s stubService) FetchResource(context.Context, string) (string, error) {
	return s.content, s.err
}

func (s stubService) AccessCount(context.Context, string) (int64, error) {
	return s.count, s.err
}

func serve(s service.FetchService, method, target string) *httptest.ResponseRecorder {
	handler := http.NewAPIHTTPHandler(endpoint.MakeEndpoints(s), nil)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHTTP(t *testing.T) {
	t.Parallel()

	t.Run("Page", func(t *testing.T) {
		t.Parallel()
		rec := serve(stubService{content: "<p>hi</p>"}, "GET", "http://something.com/page?url=http%3A%2F%2Fexample.test%2Fa")
		assert.Equal(t, 200, rec.Code, "Should have 200 status code.")
		assert.Equal(t, "<p>hi</p>", rec.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("Count", func(t *testing.T) {
		t.Parallel()
		rec := serve(stubService{count: 3}, "GET", "http://something.com/count?url=a")
		require.Equal(t, 200, rec.Code, "Should have 200 status code.")
		var body struct {
			URL   string `json:"url"`
			Count int64  `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "a", body.URL)
		assert.Equal(t, int64(3), body.Count)
	})

	t.Run("Missing URL", func(t *testing.T) {
		t.Parallel()
		rec := serve(stubService{}, "GET", "http://something.com/page")
		assert.Equal(t, 400, rec.Code, "Should have 400 status code.")
	})

	t.Run("Method", func(t *testing.T) {
		t.Parallel()
		rec := serve(stubService{}, "POST", "http://something.com/page?url=a")
		assert.Equal(t, 405, rec.Code, "Should have 405 status code.")
	})

	t.Run("Fetch Failure", func(t *testing.T) {
		t.Parallel()
		err := &service.FetchFailure{ID: "a", Err: errors.New("status 404")}
		rec := serve(stubService{err: err}, "GET", "http://something.com/page?url=a")
		assert.Equal(t, 502, rec.Code, "Should have 502 status code.")
		assert.Contains(t, rec.Body.String(), "status 404", "Error value should be in response.")
	})

	t.Run("Store Failure", func(t *testing.T) {
		t.Parallel()
		err := &service.StoreFailure{Op: "incr", Key: "count:a", Err: errors.New("refused")}
		rec := serve(stubService{err: err}, "GET", "http://something.com/count?url=a")
		assert.Equal(t, 503, rec.Code, "Should have 503 status code.")
	})

	t.Run("Error", func(t *testing.T) {
		t.Parallel()
		rec := serve(stubService{err: errors.New("error")}, "GET", "http://something.com/page?url=a")
		assert.Equal(t, 500, rec.Code, "Should have 500 status code.")
		assert.Contains(t, rec.Body.String(), "error", "Error value should be in response.")
	})
}
