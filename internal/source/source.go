// Package source defines the contract between the merge pipeline and the
// metadata providers that enrich catalog records.
package source

import (
	"context"
	"strings"

	"github.com/papercat/papercat/internal/record"
)

// Query identifies the paper an adapter is asked about.
type Query struct {
	Title string
	DOI   string // "" when unknown
}

// Identifier returns the best available identifier: the DOI when known,
// else the title.
func (q Query) Identifier() string {
	if doi := strings.TrimSpace(q.DOI); doi != "" {
		return doi
	}
	return strings.TrimSpace(q.Title)
}

// HasDOI reports whether the query carries a DOI.
func (q Query) HasDOI() bool {
	return strings.TrimSpace(q.DOI) != ""
}

// Payload is what one source knows about a paper: labels for its category
// group and, for some sources, an abstract.
type Payload struct {
	Title    string // title as reported by the source, informational
	DOI      string // DOI as reported by the source, without resolver prefix
	Abstract string
	Fields   record.Group
}

// Empty reports whether the payload carries neither labels nor an abstract.
func (p *Payload) Empty() bool {
	if p == nil {
		return true
	}
	if strings.TrimSpace(p.Abstract) != "" {
		return false
	}
	for _, labels := range p.Fields {
		if len(labels) > 0 {
			return false
		}
	}
	return true
}

// Adapter queries one metadata source.
//
// Fetch returns (nil, nil) when the source has no record for the paper. An
// error means the source could not answer (transport or parse failure);
// callers treat it as "no result" for that source.
type Adapter interface {
	Source() record.Source
	Fetch(ctx context.Context, q Query) (*Payload, error)
}

// Func adapts a plain function to the Adapter interface.
type Func struct {
	Src record.Source
	Fn  func(ctx context.Context, q Query) (*Payload, error)
}

// Source implements Adapter.
func (f Func) Source() record.Source { return f.Src }

// Fetch implements Adapter.
func (f Func) Fetch(ctx context.Context, q Query) (*Payload, error) {
	return f.Fn(ctx, q)
}
