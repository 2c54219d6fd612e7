// Package normalize canonicalizes free-text identifiers (titles, DOIs) for
// equality comparison.
package normalize

import "strings"

// doiPrefixes are resolver prefixes sources put in front of a bare DOI.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// Text lowercases s, collapses every run of whitespace to a single space and
// trims the ends. Empty input yields "".
func Text(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Equal reports whether a and b have identical normalized forms.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}

// CleanDOI strips a resolver prefix from a DOI reported by a source and trims
// surrounding whitespace. Case is preserved; comparison goes through Text.
func CleanDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(doi[len(prefix):])
		}
	}
	return doi
}
