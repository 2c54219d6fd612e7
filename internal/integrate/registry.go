package integrate

import (
	"fmt"

	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

// DefaultOrder is the pipeline order: the citation registry first so a
// record exists for the others to enrich, then the open-access aggregator,
// the topic index and the code index.
var DefaultOrder = []record.Source{
	record.SourceCrossref,
	record.SourceOpenAIRE,
	record.SourceOpenAlex,
	record.SourcePapersWithCode,
}

// Registry is the ordered, static list of adapters the pipeline runs.
type Registry []source.Adapter

// NewRegistry builds a registry, rejecting two adapters for one source.
func NewRegistry(adapters ...source.Adapter) (Registry, error) {
	seen := make(map[record.Source]bool, len(adapters))
	reg := make(Registry, 0, len(adapters))
	for _, a := range adapters {
		if a == nil {
			continue
		}
		src := a.Source()
		if seen[src] {
			return nil, fmt.Errorf("duplicate adapter for source %q", src)
		}
		seen[src] = true
		reg = append(reg, a)
	}
	return reg, nil
}

// Sources lists the registry's sources in run order.
func (r Registry) Sources() []record.Source {
	out := make([]record.Source, len(r))
	for i, a := range r {
		out[i] = a.Source()
	}
	return out
}
