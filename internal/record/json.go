package record

import (
	"bytes"
	"encoding/json"
	"sort"
)

// recordJSON is the durable layout of a Record.
type recordJSON struct {
	Title    string `json:"title"`
	DOI      string `json:"doi"`
	Abstract string `json:"abstract"`

	ORKG           *orderedGroup `json:"orkg categories,omitempty"`
	PapersWithCode *orderedGroup `json:"papers with code categories,omitempty"`
	OpenAlex       *orderedGroup `json:"openalex categories,omitempty"`
	OpenAIRE       *orderedGroup `json:"openaire categories,omitempty"`
	Crossref       *orderedGroup `json:"crossref categories,omitempty"`
}

// orderedGroup encodes a group with its source's fields first, in their
// fixed order, then any other keys sorted.
type orderedGroup struct {
	src Source
	g   Group
}

func ordered(src Source, g Group) *orderedGroup {
	if g == nil {
		return nil
	}
	return &orderedGroup{src: src, g: g}
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return marshal(recordJSON{
		Title:          r.Title,
		DOI:            r.DOI,
		Abstract:       r.Abstract,
		ORKG:           ordered(SourceORKG, r.ORKG),
		PapersWithCode: ordered(SourcePapersWithCode, r.PapersWithCode),
		OpenAlex:       ordered(SourceOpenAlex, r.OpenAlex),
		OpenAIRE:       ordered(SourceOpenAIRE, r.OpenAIRE),
		Crossref:       ordered(SourceCrossref, r.Crossref),
	})
}

// MarshalJSON implements json.Marshaler.
func (o orderedGroup) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := marshal(o.g[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o orderedGroup) keys() []string {
	keys := make([]string, 0, len(o.g))
	known := make(map[string]bool)
	for _, f := range fields[o.src] {
		known[f] = true
		if _, ok := o.g[f]; ok {
			keys = append(keys, f)
		}
	}

	var extra []string
	for k := range o.g {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// marshal encodes v leaving <, > and & unescaped; the outer encoder does not
// undo escaping done here.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
