package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedTransport wraps a Transport with a token bucket limiter
type RateLimitedTransport struct {
	transport Transport
	limiter   *rate.Limiter
}

// NewRateLimitedTransport creates a new rate limited transport
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedTransport(transport Transport, rps float64, burst int) *RateLimitedTransport {
	return &RateLimitedTransport{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Get waits for the limiter and forwards to the underlying transport
func (r *RateLimitedTransport) Get(ctx context.Context, url string) (*Response, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	return r.transport.Get(ctx, url)
}

// Verify that our rate limited type implements the required interface
var _ Transport = (*RateLimitedTransport)(nil)
