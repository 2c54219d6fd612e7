// Package openaire adapts the OpenAIRE publication search API, the
// open-access aggregator, to the source contract.
package openaire

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/papercat/papercat/internal/apiclient"
	"github.com/papercat/papercat/internal/normalize"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

const (
	// BaseURL is the OpenAIRE search API base URL.
	BaseURL = "https://api.openaire.eu/search"

	// RateLimit keeps well under the anonymous quota.
	RateLimit = 2.0
)

// Client looks papers up in OpenAIRE.
type Client struct {
	api     *apiclient.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithAPIClient replaces the underlying HTTP client.
func WithAPIClient(api *apiclient.Client) Option {
	return func(c *Client) {
		c.api = api
	}
}

// NewClient creates an OpenAIRE client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		api:     apiclient.New("openaire", apiclient.WithRateLimit(RateLimit)),
		baseURL: BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source implements source.Adapter.
func (c *Client) Source() record.Source {
	return record.SourceOpenAIRE
}

// Fetch implements source.Adapter. The query's DOI is used when present,
// else its title as keywords.
func (c *Client) Fetch(ctx context.Context, q source.Query) (*source.Payload, error) {
	params := url.Values{}
	params.Set("format", "xml")
	if q.HasDOI() {
		params.Set("doi", normalize.CleanDOI(q.DOI))
	} else {
		title := strings.TrimSpace(q.Title)
		if title == "" {
			return nil, nil
		}
		params.Set("keywords", title)
	}

	body, err := c.api.Get(ctx, c.baseURL+"/publications?"+params.Encode(), "application/xml")
	if err != nil {
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	res, err := ParseResults(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apiclient.ErrInvalidResponse, err)
	}
	if res.Results == 0 {
		return nil, nil
	}

	return &source.Payload{
		Abstract: res.Abstract,
		Fields: record.Group{
			record.FieldSubjects: res.Subjects,
		},
	}, nil
}

// Results is what papercat extracts from a search response.
type Results struct {
	Results  int      // number of <result> elements seen
	Subjects []string // distinct subjects across all results, first-seen order
	Abstract string   // first non-empty description
}

// ParseResults scans an OpenAIRE XML response. Element names are matched on
// their local part so the oaf: namespaced payload and the plain envelope are
// read alike.
func ParseResults(r io.Reader) (Results, error) {
	var res Results
	seen := make(map[string]bool)
	depth := 0 // nesting depth inside <result> elements

	dec := xml.NewDecoder(r)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Results{}, fmt.Errorf("parsing OpenAIRE XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "result":
				if depth == 0 {
					res.Results++
				}
				depth++
			case "subject":
				if depth == 0 {
					continue
				}
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return Results{}, fmt.Errorf("parsing subject: %w", err)
				}
				text = strings.TrimSpace(text)
				if text != "" && !seen[text] {
					seen[text] = true
					res.Subjects = append(res.Subjects, text)
				}
			case "description":
				if depth == 0 {
					continue
				}
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return Results{}, fmt.Errorf("parsing description: %w", err)
				}
				if text = strings.TrimSpace(text); text != "" && res.Abstract == "" {
					res.Abstract = text
				}
			}
		case xml.EndElement:
			if t.Name.Local == "result" && depth > 0 {
				depth--
			}
		}
	}

	return res, nil
}
