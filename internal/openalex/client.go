// Package openalex adapts the OpenAlex works API, the topic-classification
// index, to the source contract.
package openalex

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
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// RateLimit is OpenAlex's documented per-second limit.
	RateLimit = 10.0
)

// Client looks papers up in OpenAlex.
type Client struct {
	api     *apiclient.Client
	baseURL string
	mailto  string
	apiKey  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithMailto joins OpenAlex's polite pool.
func WithMailto(mailto string) Option {
	return func(c *Client) {
		c.mailto = mailto
	}
}

// WithAPIKey sets the premium API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithAPIClient replaces the underlying HTTP client.
func WithAPIClient(api *apiclient.Client) Option {
	return func(c *Client) {
		c.api = api
	}
}

// NewClient creates an OpenAlex client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		api:     apiclient.New("openalex", apiclient.WithRateLimit(RateLimit)),
		baseURL: BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source implements source.Adapter.
func (c *Client) Source() record.Source {
	return record.SourceOpenAlex
}

// Fetch implements source.Adapter.
func (c *Client) Fetch(ctx context.Context, q source.Query) (*source.Payload, error) {
	var (
		work *Work
		err  error
	)
	if q.HasDOI() {
		work, err = c.GetWorkByDOI(ctx, normalize.CleanDOI(q.DOI))
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

	return ToPayload(*work), nil
}

// GetWorkByDOI fetches a work by DOI.
func (c *Client) GetWorkByDOI(ctx context.Context, doi string) (*Work, error) {
	if doi == "" {
		return nil, fmt.Errorf("%w: empty DOI", apiclient.ErrNotFound)
	}

	u := c.baseURL + "/works/doi:" + url.PathEscape(doi) + c.authQuery("?")

	var work Work
	if err := c.api.GetJSON(ctx, u, &work); err != nil {
		return nil, err
	}
	if work.ID == "" {
		return nil, nil
	}
	return &work, nil
}

// SearchTitle returns the top search hit for a title, or nil.
func (c *Client) SearchTitle(ctx context.Context, title string) (*Work, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/works?search=%s&per_page=1%s", c.baseURL, url.QueryEscape(title), c.authQuery("&"))

	var resp searchResponse
	if err := c.api.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

func (c *Client) authQuery(sep string) string {
	params := url.Values{}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if len(params) == 0 {
		return ""
	}
	return sep + params.Encode()
}

// ToPayload maps a work onto the openalex category group.
func ToPayload(w Work) *source.Payload {
	primary := []string{}
	if w.PrimaryTopic != nil && w.PrimaryTopic.DisplayName != "" {
		primary = append(primary, w.PrimaryTopic.DisplayName)
	}

	topics := make([]string, 0, len(w.Topics))
	for _, t := range w.Topics {
		if t.DisplayName != "" {
			topics = append(topics, t.DisplayName)
		}
	}

	concepts := make([]string, 0, len(w.Concepts))
	for _, cpt := range w.Concepts {
		if cpt.DisplayName != "" {
			concepts = append(concepts, cpt.DisplayName)
		}
	}

	return &source.Payload{
		Title:    w.WorkTitle(),
		DOI:      normalize.CleanDOI(w.DOI),
		Abstract: w.Abstract(),
		Fields: record.Group{
			record.FieldPrimaryTopics: primary,
			record.FieldTopics:        topics,
			record.FieldConcepts:      concepts,
		},
	}
}
