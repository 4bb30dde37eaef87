package datasource

import (
	"context"
)

// Response is the raw outcome of a GET against the API
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs GET requests for fully formed URLs
type Transport interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, url string) (*Response, error)

// Get calls f
func (f TransportFunc) Get(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}
