// Package merge folds a source payload into the catalog under the
// fill-if-missing policy: a value is written only where the record has
// none, so previously captured data is never replaced.
package merge

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

// ErrMissingTitle is returned when a new record would have no title.
var ErrMissingTitle = record.ErrMissingTitle

// ErrInvalidIndex is returned for an index outside the catalog.
var ErrInvalidIndex = errors.New("record index out of range")

// Result describes what Apply did.
type Result struct {
	Index   int      // record written or matched; catalog.NotFound if none
	Created bool     // a new record was appended
	Changed bool     // the catalog differs structurally from before the call
	Filled  []string // fields written, e.g. "abstract", "crossref categories.subjects"
}

// Apply merges payload into the record at idx, or creates a record when idx
// is catalog.NotFound and the policy allows it. A nil payload means the
// source had no result.
//
// The record at idx is mutated in place; the returned catalog must be used
// in place of cat since creation appends.
func Apply(cat catalog.Catalog, idx int, title, doi string, payload *source.Payload, pol Policy) (catalog.Catalog, Result, error) {
	if idx == catalog.NotFound {
		return create(cat, title, doi, payload, pol)
	}
	if !cat.Valid(idx) {
		return cat, Result{Index: catalog.NotFound}, fmt.Errorf("%w: %d (catalog has %d records)", ErrInvalidIndex, idx, len(cat))
	}

	res := Result{Index: idx}
	if payload == nil {
		return cat, res, nil
	}

	before := cat[idx].Clone()
	res.Filled = fill(&cat[idx], payload, pol)
	res.Changed = !reflect.DeepEqual(before, cat[idx])

	return cat, res, nil
}

func create(cat catalog.Catalog, title, doi string, payload *source.Payload, pol Policy) (catalog.Catalog, Result, error) {
	res := Result{Index: catalog.NotFound}

	switch pol.Create {
	case CreateNever:
		return cat, res, nil
	case CreateWithData:
		if payload.Empty() {
			return cat, res, nil
		}
	}

	// A source-reported DOI may come from an unverified title search, so the
	// record only ever carries the caller's DOI.
	rec, err := record.New(strings.TrimSpace(title), doi)
	if err != nil {
		return cat, res, err
	}
	if payload != nil {
		res.Filled = fill(&rec, payload, pol)
	}

	cat = append(cat, rec)
	res.Index = len(cat) - 1
	res.Created = true
	res.Changed = true

	return cat, res, nil
}

// fill writes each declared value the record lacks and returns what it wrote.
func fill(rec *record.Record, payload *source.Payload, pol Policy) []string {
	var filled []string

	if pol.Abstract {
		abstract := strings.TrimSpace(payload.Abstract)
		if abstract != "" && strings.TrimSpace(rec.Abstract) == "" {
			rec.Abstract = abstract
			filled = append(filled, "abstract")
		}
	}

	for _, field := range pol.Fields {
		labels := payload.Fields[field]
		if pol.dedups(field) {
			labels = Unique(labels)
		} else {
			labels = append([]string(nil), labels...)
		}
		if len(labels) == 0 {
			continue
		}

		if !rec.Group(pol.Source).IsEmpty(field) {
			continue
		}
		rec.EnsureGroup(pol.Source)[field] = labels
		filled = append(filled, record.GroupKey(pol.Source)+"."+field)
	}

	return filled
}

// Unique returns the distinct non-blank labels in sorted order.
func Unique(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if strings.TrimSpace(l) == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
