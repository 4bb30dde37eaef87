// Package wunderground is a fluent client for the Weather Underground API.
//
// Resources are selected by chaining calls that each return a new Request,
// and a terminal call (Do, Execute, History) issues the request:
//
//	doc, err := client.Conditions().Forecast().Do(ctx, "84111")
//
// A client built with a Simulator never touches the network; it answers
// from synthetic hourly data instead.
package wunderground

import (
	"fmt"
	"strings"

	"wunderground-service/datasource"
	"wunderground-service/logger"
	"wunderground-service/models"
	"wunderground-service/simulation"
)

const format = ".json"

// Client holds the credential and the collaborators shared by all requests.
// It carries no per-request state and is safe for concurrent use.
type Client struct {
	apiKey    string
	baseURL   string
	transport datasource.Transport
	simulator *simulation.Simulator
	logger    logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithTransport sets the transport used for live requests
func WithTransport(t datasource.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithSimulator switches the client to simulation mode
func WithSimulator(s *simulation.Simulator) Option {
	return func(c *Client) { c.simulator = s }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for apiKey
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: datasource.DefaultBaseURL,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = datasource.NewHTTPTransport(datasource.DefaultConfig().Timeout)
	}
	return c
}

// NewFromConfig builds a live or simulated client from loaded configuration
func NewFromConfig(cfg *datasource.Config, log logger.Logger) (*Client, error) {
	opts := []Option{
		WithBaseURL(cfg.BaseURL),
		WithLogger(log.WithField("component", "wunderground_client")),
	}

	if cfg.Simulate {
		table, err := simulation.NewCoefficientTable(cfg.Simulation.Coefficients)
		if err != nil {
			return nil, fmt.Errorf("failed to build simulator: %w", err)
		}
		simOpts := []simulation.Option{
			simulation.WithCoefficients(table),
			simulation.WithLogger(log.WithField("component", "simulator")),
		}
		if cfg.Simulation.Seed != 0 {
			simOpts = append(simOpts, simulation.WithSeed(cfg.Simulation.Seed))
		}
		opts = append(opts, WithSimulator(simulation.NewSimulator(simOpts...)))
	} else {
		opts = append(opts, WithTransport(cfg.NewTransport()))
	}

	return New(cfg.APIKey, opts...), nil
}

// Simulated reports whether the client fabricates responses
func (c *Client) Simulated() bool {
	return c.simulator != nil
}

// Request starts an empty chain
func (c *Client) Request() Request {
	return Request{client: c}
}

// Select starts a chain with the given resources
func (c *Client) Select(resources ...models.Resource) Request {
	return c.Request().Select(resources...)
}

func (c *Client) Conditions() Request           { return c.Request().Conditions() }
func (c *Client) HourlyForecast() Request       { return c.Request().HourlyForecast() }
func (c *Client) HourlyTenDayForecast() Request { return c.Request().HourlyTenDayForecast() }
func (c *Client) Forecast() Request             { return c.Request().Forecast() }
func (c *Client) Almanac() Request              { return c.Request().Almanac() }
func (c *Client) Yesterday() Request            { return c.Request().Yesterday() }
func (c *Client) Geolookup() Request            { return c.Request().Geolookup() }
func (c *Client) Astronomy() Request            { return c.Request().Astronomy() }
func (c *Client) Alerts() Request               { return c.Request().Alerts() }

// buildURL assembles <base>/<key>/<tokens>q/<query>.json
func (c *Client) buildURL(apiKey string, selectors []selector, query string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/")
	b.WriteString(apiKey)
	b.WriteString("/")
	for _, s := range selectors {
		b.WriteString(s.token)
	}
	b.WriteString("q/")
	b.WriteString(query)
	b.WriteString(format)
	return b.String()
}
