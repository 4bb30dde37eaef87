package wunderground

import (
	"errors"
	"fmt"

	"wunderground-service/models"
)

var (
	// ErrMissingQuery is reported when a terminal call gets an empty location query
	ErrMissingQuery = errors.New("You must supply a query")
	// ErrNoResource is reported when a terminal call is made before selecting a resource
	ErrNoResource = errors.New("You must specify a resource to request first (e.g., client.Conditions().Do(ctx, query))")
	// ErrBadHistoryDate is reported for history dates that are not YYYYMMDD
	ErrBadHistoryDate = errors.New("history date must be formatted YYYYMMDD")
)

// UsageError is a recoverable caller mistake. No request was made.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure to obtain or decode a response
type TransportError struct {
	URL string // key redacted
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-200 response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// ResultOf converts the outcome of Do into the tagged Result handed to callbacks
func ResultOf(doc models.Document, err error) models.Result {
	if err == nil {
		return models.Result{Kind: models.Success, Document: doc}
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return models.Result{Kind: models.UsageFault, Message: usage.Error(), Err: err}
	}
	return models.Result{Kind: models.TransportFault, Err: err}
}
