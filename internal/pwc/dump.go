package pwc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papercat/papercat/internal/normalize"
)

// ErrDumpNotFound is returned when the code-index dump file does not exist.
var ErrDumpNotFound = errors.New("papers-with-code dump not found")

// Paper is one entry of papers_with_abstracts.json.
type Paper struct {
	PaperURL string   `json:"paper_url"`
	ArxivID  string   `json:"arxiv_id"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Tasks    []string `json:"tasks"`
	Methods  []Method `json:"methods"`
}

// Method is a method attached to a paper.
type Method struct {
	Name           string      `json:"name"`
	FullName       string      `json:"full_name"`
	Description    string      `json:"description"`
	MainCollection *Collection `json:"main_collection"`
}

// Collection groups related methods.
type Collection struct {
	Name string `json:"name"`
	Area string `json:"area"`
}

// Dump is the code-index dump indexed by normalized title.
type Dump struct {
	byTitle map[string]Paper
}

// LoadDump reads the dump from path.
func LoadDump(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDumpNotFound, path)
		}
		return nil, fmt.Errorf("opening dump: %w", err)
	}
	defer f.Close()

	d, err := ReadDump(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

// ReadDump streams a JSON array of papers. When several entries share a
// normalized title the first one wins.
func ReadDump(r io.Reader) (*Dump, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading opening token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected JSON array, got %v", tok)
	}

	d := &Dump{byTitle: make(map[string]Paper)}
	for dec.More() {
		var p Paper
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decoding paper %d: %w", len(d.byTitle)+1, err)
		}
		key := normalize.Text(p.Title)
		if key == "" {
			continue
		}
		if _, seen := d.byTitle[key]; !seen {
			d.byTitle[key] = p
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading closing token: %w", err)
	}
	return d, nil
}

// Lookup finds a paper by title under normalization.
func (d *Dump) Lookup(title string) (Paper, bool) {
	key := normalize.Text(title)
	if key == "" || d == nil {
		return Paper{}, false
	}
	p, ok := d.byTitle[key]
	return p, ok
}

// Len returns the number of indexed papers.
func (d *Dump) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byTitle)
}

// Labels flattens a paper's methods into method names, collection names and
// collection areas, skipping blanks. Duplicates are kept.
func (p Paper) Labels() (methods, collections, areas []string) {
	methods, collections, areas = []string{}, []string{}, []string{}
	for _, m := range p.Methods {
		if strings.TrimSpace(m.Name) != "" {
			methods = append(methods, m.Name)
		}
		if m.MainCollection == nil {
			continue
		}
		if strings.TrimSpace(m.MainCollection.Name) != "" {
			collections = append(collections, m.MainCollection.Name)
		}
		if strings.TrimSpace(m.MainCollection.Area) != "" {
			areas = append(areas, m.MainCollection.Area)
		}
	}
	return methods, collections, areas
}
