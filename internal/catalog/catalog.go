// Package catalog holds the ordered in-memory collection of records, its
// durable JSON document, and the resolver that locates a paper in it.
package catalog

import "github.com/papercat/papercat/internal/record"

// Catalog is the ordered collection of records. It is threaded explicitly
// through resolver, merge engine and orchestrator; like append, functions
// that grow it return the updated value.
type Catalog []record.Record

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	for i, rec := range c {
		out[i] = rec.Clone()
	}
	return out
}

// Valid reports whether idx addresses a record.
func (c Catalog) Valid(idx int) bool {
	return idx >= 0 && idx < len(c)
}

// MissingSource returns the indexes of records with no labels from src.
func (c Catalog) MissingSource(src record.Source) []int {
	var out []int
	for i := range c {
		if !c[i].HasLabels(src) {
			out = append(out, i)
		}
	}
	return out
}
