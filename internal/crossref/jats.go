package crossref

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripJATS converts a Crossref JATS abstract to plain text. The leading
// <jats:title> ("Abstract") is dropped.
func StripJATS(abstract string) string {
	abstract = strings.TrimSpace(abstract)
	if abstract == "" || !strings.Contains(abstract, "<") {
		return strings.Join(strings.Fields(abstract), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(abstract))
	if err != nil {
		return strings.Join(strings.Fields(abstract), " ")
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "jats:title" {
			s.Remove()
		}
	})

	var parts []string
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "jats:p" {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		}
	})
	text := strings.Join(parts, " ")
	if text == "" {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " ")
}
