package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Get(t *testing.T) {
	t.Run("returns status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/key/conditions/q/84111.json", r.URL.Path)
			w.Write([]byte(`{"current_observation":{}}`))
		}))
		defer server.Close()

		transport := NewHTTPTransport(time.Second)
		resp, err := transport.Get(context.Background(), server.URL+"/api/key/conditions/q/84111.json")

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"current_observation":{}}`, string(resp.Body))
	})

	t.Run("non-200 is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("down"))
		}))
		defer server.Close()

		resp, err := NewHTTPTransport(time.Second).Get(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "down", string(resp.Body))
	})

	t.Run("connection failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		resp, err := NewHTTPTransport(time.Second).Get(context.Background(), url)

		assert.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "failed to execute request")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewHTTPTransport(time.Second).Get(context.Background(), "://bad")
		assert.ErrorContains(t, err, "failed to create request")
	})
}

func TestRateLimitedTransport_Get(t *testing.T) {
	var calls int32
	inner := TransportFunc(func(ctx context.Context, url string) (*Response, error) {
		atomic.AddInt32(&calls, 1)
		return &Response{StatusCode: http.StatusOK}, nil
	})

	t.Run("allows the burst", func(t *testing.T) {
		transport := NewRateLimitedTransport(inner, 1, 2)

		for i := 0; i < 2; i++ {
			_, err := transport.Get(context.Background(), "http://example")
			require.NoError(t, err)
		}
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("wait honours the context", func(t *testing.T) {
		atomic.StoreInt32(&calls, 0)
		transport := NewRateLimitedTransport(inner, 0.001, 1)

		_, err := transport.Get(context.Background(), "http://example")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = transport.Get(ctx, "http://example")

		assert.ErrorContains(t, err, "rate limit wait canceled")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
