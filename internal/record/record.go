// Package record defines the canonical catalog entry for a paper and the
// per-source category groups folded into it.
package record

import (
	"errors"
	"strings"
)

// ErrMissingTitle is returned when a record would be created without a title.
var ErrMissingTitle = errors.New("record title is required")

// Record is one catalog entry: a single paper's accumulated metadata.
// Field order matches the durable JSON layout.
type Record struct {
	// Identity
	Title string `json:"title"`
	DOI   string `json:"doi"` // "" when unknown

	Abstract string `json:"abstract"`

	// Category groups, one namespace per source. A nil group was never
	// written and is omitted from the file.
	ORKG           Group `json:"orkg categories,omitempty"`
	PapersWithCode Group `json:"papers with code categories,omitempty"`
	OpenAlex       Group `json:"openalex categories,omitempty"`
	OpenAIRE       Group `json:"openaire categories,omitempty"`
	Crossref       Group `json:"crossref categories,omitempty"`
}

// New creates a record with every category group materialized and empty.
func New(title, doi string) (Record, error) {
	if strings.TrimSpace(title) == "" {
		return Record{}, ErrMissingTitle
	}

	rec := Record{
		Title: title,
		DOI:   strings.TrimSpace(doi),
	}
	for _, src := range AllSources {
		rec.SetGroup(src, EmptyGroup(src))
	}
	return rec, nil
}

// Group returns the category group for a source (nil if absent).
func (r *Record) Group(src Source) Group {
	if p := r.groupPtr(src); p != nil {
		return *p
	}
	return nil
}

// SetGroup replaces the category group for a source.
func (r *Record) SetGroup(src Source, g Group) {
	if p := r.groupPtr(src); p != nil {
		*p = g
	}
}

// EnsureGroup returns the source's group, creating an empty map if absent.
func (r *Record) EnsureGroup(src Source) Group {
	p := r.groupPtr(src)
	if p == nil {
		return nil
	}
	if *p == nil {
		*p = Group{}
	}
	return *p
}

func (r *Record) groupPtr(src Source) *Group {
	switch src {
	case SourceORKG:
		return &r.ORKG
	case SourcePapersWithCode:
		return &r.PapersWithCode
	case SourceOpenAlex:
		return &r.OpenAlex
	case SourceOpenAIRE:
		return &r.OpenAIRE
	case SourceCrossref:
		return &r.Crossref
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	for _, src := range AllSources {
		out.SetGroup(src, r.Group(src).Clone())
	}
	return out
}

// HasLabels reports whether any field of the source's group holds a label.
func (r *Record) HasLabels(src Source) bool {
	for _, labels := range r.Group(src) {
		if len(labels) > 0 {
			return true
		}
	}
	return false
}
