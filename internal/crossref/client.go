// Package crossref adapts the Crossref REST API, the citation registry, to
// the source contract. It reports a work's subjects and abstract.
package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/papercat/papercat/internal/apiclient"
	"github.com/papercat/papercat/internal/normalize"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// RateLimit is the polite-pool request rate.
	RateLimit = 10.0
)

// Client looks papers up in Crossref.
type Client struct {
	api     *apiclient.Client
	baseURL string
	mailto  string
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL string
	mailto  string
	apiOpts []apiclient.Option
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *clientConfig) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithMailto identifies the caller for Crossref's polite pool.
func WithMailto(mailto string) Option {
	return func(c *clientConfig) {
		c.mailto = mailto
	}
}

// WithAPIOptions passes options to the underlying HTTP client.
func WithAPIOptions(opts ...apiclient.Option) Option {
	return func(c *clientConfig) {
		c.apiOpts = append(c.apiOpts, opts...)
	}
}

// NewClient creates a Crossref client.
func NewClient(opts ...Option) *Client {
	cfg := clientConfig{baseURL: BaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	ua := "papercat/1.0"
	if cfg.mailto != "" {
		ua = fmt.Sprintf("papercat/1.0 (mailto:%s)", cfg.mailto)
	}

	apiOpts := append([]apiclient.Option{
		apiclient.WithRateLimit(RateLimit),
		apiclient.WithUserAgent(ua),
	}, cfg.apiOpts...)

	return &Client{
		api:     apiclient.New("crossref", apiOpts...),
		baseURL: cfg.baseURL,
		mailto:  cfg.mailto,
	}
}

// Source implements source.Adapter.
func (c *Client) Source() record.Source {
	return record.SourceCrossref
}

// Fetch implements source.Adapter: DOI lookup when the query has a DOI,
// else the top title-search hit.
func (c *Client) Fetch(ctx context.Context, q source.Query) (*source.Payload, error) {
	var (
		work *Work
		err  error
	)
	if q.HasDOI() {
		work, err = c.GetWork(ctx, normalize.CleanDOI(q.DOI))
	} else {
		work, err = c.SearchTitle(ctx, q.Title)
	}
	if err != nil {
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if work == nil {
		return nil, nil
	}

	return toPayload(*work), nil
}

// GetWork fetches a work by DOI.
func (c *Client) GetWork(ctx context.Context, doi string) (*Work, error) {
	if doi == "" {
		return nil, fmt.Errorf("%w: empty DOI", apiclient.ErrNotFound)
	}

	u := c.baseURL + "/works/" + url.PathEscape(doi) + c.politeQuery("?")

	var resp workResponse
	if err := c.api.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// SearchTitle returns the best title match, or nil if the search is empty.
func (c *Client) SearchTitle(ctx context.Context, title string) (*Work, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/works?query.title=%s&rows=1%s", c.baseURL, url.QueryEscape(title), c.politeQuery("&"))

	var resp searchResponse
	if err := c.api.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Message.Items) == 0 {
		return nil, nil
	}
	return &resp.Message.Items[0], nil
}

func (c *Client) politeQuery(sep string) string {
	if c.mailto == "" {
		return ""
	}
	return sep + "mailto=" + url.QueryEscape(c.mailto)
}

func toPayload(w Work) *source.Payload {
	p := &source.Payload{
		DOI:      normalize.CleanDOI(w.DOI),
		Abstract: StripJATS(w.Abstract),
		Fields: record.Group{
			record.FieldSubjects: append([]string{}, w.Subject...),
		},
	}
	if len(w.Title) > 0 {
		p.Title = w.Title[0]
	}
	return p
}
