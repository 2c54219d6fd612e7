package openalex

import (
	"sort"
	"strings"
)

// Work is the subset of an OpenAlex work record papercat reads.
type Work struct {
	ID                    string           `json:"id"`
	DOI                   string           `json:"doi"` // https://doi.org/... form
	Title                 string           `json:"title"`
	DisplayName           string           `json:"display_name"`
	PrimaryTopic          *Topic           `json:"primary_topic"`
	Topics                []Topic          `json:"topics"`
	Concepts              []Concept        `json:"concepts"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// Topic is an OpenAlex topic assignment.
type Topic struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// Concept is a (legacy) OpenAlex concept tag.
type Concept struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Level       int     `json:"level"`
	Score       float64 `json:"score"`
}

// searchResponse wraps GET /works?search=...
type searchResponse struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Results []Work `json:"results"`
}

// WorkTitle returns the title, falling back to the display name.
func (w Work) WorkTitle() string {
	if w.Title != "" {
		return w.Title
	}
	return w.DisplayName
}

// Abstract rebuilds the plain-text abstract from the inverted index.
func (w Work) Abstract() string {
	return RebuildAbstract(w.AbstractInvertedIndex)
}

// RebuildAbstract places every word at each of its positions and joins the
// result with single spaces.
func RebuildAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type placed struct {
		pos  int
		word string
	}
	var words []placed
	for word, positions := range index {
		for _, p := range positions {
			words = append(words, placed{pos: p, word: word})
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].pos != words[j].pos {
			return words[i].pos < words[j].pos
		}
		return words[i].word < words[j].word
	})

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.word
	}
	return strings.Join(out, " ")
}
