package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTransport implements Transport on top of net/http
type HTTPTransport struct {
	httpClient *http.Client
}

// NewHTTPTransport creates a transport with the given request timeout
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get fetches url and returns the status code with the full body.
// Non-200 statuses are not errors at this level.
func (t *HTTPTransport) Get(ctx context.Context, url string) (*Response, error) {
	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Execute request
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

var _ Transport = (*HTTPTransport)(nil)
