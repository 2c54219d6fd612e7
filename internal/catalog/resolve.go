package catalog

import "github.com/papercat/papercat/internal/normalize"

// NotFound is the index reported when no record matches.
const NotFound = -1

// Resolve returns the index of the record a (title, doi) query refers to.
//
// Records are scanned in catalog order. A normalized title match wins; only
// when no title matches is the normalized DOI compared, and an empty query
// DOI never matches. If the title selects one record and the DOI another,
// the title match is returned and the two are left alone (see ResolveAll).
func Resolve(cat Catalog, title, doi string) (int, bool) {
	if i := findByTitle(cat, normalize.Text(title)); i != NotFound {
		return i, true
	}
	if i := findByDOI(cat, normalize.Text(doi)); i != NotFound {
		return i, true
	}
	return NotFound, false
}

// Match reports every candidate a query could resolve to.
type Match struct {
	TitleIndex int // NotFound if no title match
	DOIIndex   int // NotFound if no DOI match or no query DOI
}

// Index returns the record Resolve would pick.
func (m Match) Index() int {
	if m.TitleIndex != NotFound {
		return m.TitleIndex
	}
	return m.DOIIndex
}

// Ambiguous reports whether title and DOI point at different records.
func (m Match) Ambiguous() bool {
	return m.TitleIndex != NotFound && m.DOIIndex != NotFound && m.TitleIndex != m.DOIIndex
}

// ResolveAll evaluates both matching criteria independently.
func ResolveAll(cat Catalog, title, doi string) Match {
	return Match{
		TitleIndex: findByTitle(cat, normalize.Text(title)),
		DOIIndex:   findByDOI(cat, normalize.Text(doi)),
	}
}

func findByTitle(cat Catalog, normTitle string) int {
	if normTitle == "" {
		return NotFound
	}
	for i := range cat {
		if normalize.Text(cat[i].Title) == normTitle {
			return i
		}
	}
	return NotFound
}

func findByDOI(cat Catalog, normDOI string) int {
	if normDOI == "" {
		return NotFound
	}
	for i := range cat {
		if normalize.Text(cat[i].DOI) == normDOI {
			return i
		}
	}
	return NotFound
}
