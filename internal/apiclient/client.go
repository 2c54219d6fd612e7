// Package apiclient is the rate-limited HTTP plumbing shared by the network
// source adapters.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 5.0

	// DefaultMaxRetries is how often a 429 or 5xx response is retried.
	DefaultMaxRetries = 2

	// DefaultBackoff is the first retry delay; it doubles per attempt.
	DefaultBackoff = time.Second

	// MaxBodySize caps how much of a response body is read.
	MaxBodySize = 16 * 1024 * 1024
)

// Client is a rate-limited HTTP client for one metadata service.
type Client struct {
	service    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	headers    map[string]string
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the sustained requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithRetries sets how many times a retryable response is retried and the
// initial backoff between attempts.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// New creates a client for the named service.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service:    service,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		headers:    make(map[string]string),
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Service returns the service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Get fetches url and returns the response body. 404 maps to ErrNotFound;
// 429 and 5xx are retried with exponential backoff.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retry, err := c.do(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s: after %d retries: %w", c.service, c.maxRetries, lastErr)
}

// do performs one request. The bool reports whether the failure is retryable.
func (c *Client) do(ctx context.Context, url string, accept string) ([]byte, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %s: %v", ErrNetworkError, c.service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading %s response: %v", ErrNetworkError, c.service, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, c.service)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("%w: %s", ErrRateLimited, c.service)
	case resp.StatusCode >= 500:
		return nil, true, &APIError{Service: c.service, StatusCode: resp.StatusCode, Message: snippet(body)}
	default:
		return nil, false, &APIError{Service: c.service, StatusCode: resp.StatusCode, Message: snippet(body)}
	}
}

// GetJSON fetches url and decodes a JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: parsing %s JSON: %v", ErrInvalidResponse, c.service, err)
	}
	return nil
}

// GetXML fetches url and decodes an XML body into v.
func (c *Client) GetXML(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url, "application/xml")
	if err != nil {
		return err
	}
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return fmt.Errorf("%w: parsing %s XML: %v", ErrInvalidResponse, c.service, err)
	}
	return nil
}

// snippet returns the start of a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	body = bytes.TrimSpace(body)
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
