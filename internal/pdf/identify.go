// Package pdf pulls a paper's identifying metadata (DOI and a best-guess
// title) out of a PDF so it can be fed to the integration pipeline.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ScanPages is how many leading pages are searched for a DOI.
const ScanPages = 3

// doiPattern matches 10.NNNN/suffix, stopping at whitespace and delimiters.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Identity is what could be read from the PDF. Either field may be empty.
type Identity struct {
	Title string `json:"title"`
	DOI   string `json:"doi"`
}

// Identify opens the PDF at path and extracts its DOI and title.
func Identify(path string) (Identity, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Identity{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pages := pageTexts(r, ScanPages)
	return identifyText(pages), nil
}

// pageTexts returns the plain text of the first n pages; unreadable pages
// come back empty.
func pageTexts(r *pdf.Reader, n int) []string {
	if n > r.NumPage() {
		n = r.NumPage()
	}

	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		texts = append(texts, text)
	}
	return texts
}

func identifyText(pages []string) Identity {
	var id Identity
	for _, text := range pages {
		if id.DOI = FindDOI(text); id.DOI != "" {
			break
		}
	}
	if len(pages) > 0 {
		id.Title = guessTitle(pages[0])
	}
	return id
}

// FindDOI returns the first plausible DOI in text.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// guessTitle takes the first substantial first-page line that is not
// running header text. Best effort.
func guessTitle(firstPage string) string {
	for _, line := range strings.Split(firstPage, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > 20 && !isHeaderLine(line) && FindDOI(line) == "" {
			return line
		}
	}
	return ""
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "arxiv:"),
		strings.Contains(lower, "proceedings of"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
