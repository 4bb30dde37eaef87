package wunderground

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"wunderground-service/models"

	"github.com/google/uuid"
)

type selector struct {
	resource models.Resource
	token    string
}

// Request is an immutable chain of selected resources. Every selection
// returns a new Request, so a Request can be reused or shared between
// goroutines without one terminal call affecting another.
type Request struct {
	client    *Client
	selectors []selector
}

// Select appends resources in order. Duplicates are kept.
func (r Request) Select(resources ...models.Resource) Request {
	next := make([]selector, len(r.selectors), len(r.selectors)+len(resources))
	copy(next, r.selectors)
	for _, res := range resources {
		next = append(next, selector{resource: res, token: res.Token()})
	}
	return Request{client: r.client, selectors: next}
}

func (r Request) Conditions() Request           { return r.Select(models.Conditions) }
func (r Request) HourlyForecast() Request       { return r.Select(models.HourlyForecast) }
func (r Request) HourlyTenDayForecast() Request { return r.Select(models.HourlyTenDayForecast) }
func (r Request) Forecast() Request             { return r.Select(models.Forecast) }
func (r Request) Almanac() Request              { return r.Select(models.Almanac) }
func (r Request) Yesterday() Request            { return r.Select(models.Yesterday) }
func (r Request) Geolookup() Request            { return r.Select(models.Geolookup) }
func (r Request) Astronomy() Request            { return r.Select(models.Astronomy) }
func (r Request) Alerts() Request               { return r.Select(models.Alerts) }

// Resources returns the selected resources in order
func (r Request) Resources() []models.Resource {
	resources := make([]models.Resource, len(r.selectors))
	for i, s := range r.selectors {
		resources[i] = s.resource
	}
	return resources
}

// URL returns the URL a terminal call with query would request
func (r Request) URL(query string) string {
	return r.client.buildURL(r.client.apiKey, r.selectors, query)
}

// Do validates the chain, performs the request (or simulates it) and
// returns the decoded document.
//
// Errors are *UsageError for an empty query or an empty chain, and
// *TransportError for network failures, non-200 statuses (wrapping a
// *StatusError) and undecodable bodies.
func (r Request) Do(ctx context.Context, query string) (models.Document, error) {
	return r.do(ctx, r.selectors, query)
}

// Execute runs Do in its own goroutine and hands the outcome to callback.
// The callback is only invoked once Execute has returned. A nil callback is
// a programming error and panics at once, ahead of query and resource checks.
func (r Request) Execute(ctx context.Context, query string, callback func(models.Result)) {
	returned := make(chan struct{})
	defer close(returned)
	r.execute(ctx, r.selectors, query, callback, returned)
}

// History requests observations for a past date given as YYYYMMDD, as if
// a history resource had been appended to the chain.
func (r Request) History(ctx context.Context, date, query string) (models.Document, error) {
	selectors, err := r.withHistory(date, query)
	if err != nil {
		return nil, err
	}
	return r.do(ctx, selectors, query)
}

// ExecuteHistory is the asynchronous form of History
func (r Request) ExecuteHistory(ctx context.Context, date, query string, callback func(models.Result)) {
	if callback == nil {
		panic(errNilCallback)
	}
	returned := make(chan struct{})
	defer close(returned)

	selectors, err := r.withHistory(date, query)
	if err != nil {
		dispatch(returned, callback, func() models.Result { return ResultOf(nil, err) })
		return
	}
	r.execute(ctx, selectors, query, callback, returned)
}

// HistoryDate formats t into the YYYYMMDD token used by History
func HistoryDate(t time.Time) string {
	return t.Format("20060102")
}

var historyDatePattern = regexp.MustCompile(`^\d{8}$`)

// withHistory appends the dated history selector. An empty query is
// reported before a malformed date.
func (r Request) withHistory(date, query string) ([]selector, error) {
	if query == "" {
		return nil, &UsageError{Err: ErrMissingQuery}
	}
	if !historyDatePattern.MatchString(date) {
		return nil, &UsageError{Err: fmt.Errorf("%w, got %q", ErrBadHistoryDate, date)}
	}
	if _, err := time.Parse("20060102", date); err != nil {
		return nil, &UsageError{Err: fmt.Errorf("%w, got %q", ErrBadHistoryDate, date)}
	}

	selectors := make([]selector, len(r.selectors), len(r.selectors)+1)
	copy(selectors, r.selectors)
	return append(selectors, selector{resource: models.History, token: models.HistoryToken(date)}), nil
}

const errNilCallback = "wunderground: callback must not be nil"

func (r Request) execute(ctx context.Context, selectors []selector, query string, callback func(models.Result), returned <-chan struct{}) {
	if callback == nil {
		panic(errNilCallback)
	}
	dispatch(returned, callback, func() models.Result {
		return ResultOf(r.do(ctx, selectors, query))
	})
}

// dispatch computes the result in a new goroutine and holds the callback
// until returned is closed.
func dispatch(returned <-chan struct{}, callback func(models.Result), produce func() models.Result) {
	go func() {
		result := produce()
		<-returned
		callback(result)
	}()
}

func validate(selectors []selector, query string) error {
	if query == "" {
		return &UsageError{Err: ErrMissingQuery}
	}
	if len(selectors) == 0 {
		return &UsageError{Err: ErrNoResource}
	}
	for _, sel := range selectors {
		if sel.resource == models.History && sel.token == models.History.Token() {
			return &UsageError{Err: fmt.Errorf("%w, select history through History", ErrBadHistoryDate)}
		}
	}
	return nil
}

func (r Request) do(ctx context.Context, selectors []selector, query string) (models.Document, error) {
	if err := validate(selectors, query); err != nil {
		return nil, err
	}

	c := r.client
	log := c.logger.WithFields(map[string]interface{}{
		"request_id": uuid.NewString(),
		"query":      query,
	})

	if c.simulator != nil {
		resources := make([]models.Resource, len(selectors))
		for i, s := range selectors {
			resources[i] = s.resource
		}
		log.Debugf("Simulating %s", joinTokens(selectors))
		return c.simulator.Simulate(resources), nil
	}

	url := c.buildURL(c.apiKey, selectors, query)
	redacted := c.buildURL("<key>", selectors, query)
	log.Debugf("Requesting %s", redacted)

	resp, err := c.transport.Get(ctx, url)
	if err != nil {
		log.Warnf("Request failed: %v", err)
		return nil, &TransportError{URL: redacted, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.Warnf("Request returned status %d", resp.StatusCode)
		return nil, &TransportError{URL: redacted, Err: &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}}
	}

	var doc models.Document
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, &TransportError{URL: redacted, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	log.Debugf("Received %d sections", len(doc))
	return doc, nil
}

func joinTokens(selectors []selector) string {
	tokens := make([]string, len(selectors))
	for i, s := range selectors {
		tokens[i] = s.token
	}
	return strings.Join(tokens, "")
}
