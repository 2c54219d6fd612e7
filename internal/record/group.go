package record

import "fmt"

// Source names a metadata provider whose labels live in their own group.
type Source string

const (
	SourceCrossref       Source = "crossref"
	SourceOpenAIRE       Source = "openaire"
	SourceOpenAlex       Source = "openalex"
	SourcePapersWithCode Source = "pwc"
	SourceORKG           Source = "orkg" // populated outside papercat
)

// AllSources lists every category group in durable file order.
var AllSources = []Source{
	SourceORKG,
	SourcePapersWithCode,
	SourceOpenAlex,
	SourceOpenAIRE,
	SourceCrossref,
}

// Field names used across groups.
const (
	FieldSubjects         = "subjects"
	FieldTopics           = "topics"
	FieldPrimaryTopics    = "primary topics"
	FieldConcepts         = "concepts"
	FieldTasks            = "tasks"
	FieldMethods          = "methods"
	FieldCollectionName   = "main_collection_name"
	FieldCollectionArea   = "main_collection_area"
	FieldDomains          = "domains"
	FieldResearchProblems = "research problems"
)

// fields is the fixed field set of each group.
var fields = map[Source][]string{
	SourceORKG:           {FieldDomains, FieldMethods, FieldResearchProblems, FieldTasks},
	SourcePapersWithCode: {FieldTasks, FieldMethods, FieldCollectionName, FieldCollectionArea},
	SourceOpenAlex:       {FieldPrimaryTopics, FieldTopics, FieldConcepts},
	SourceOpenAIRE:       {FieldSubjects},
	SourceCrossref:       {FieldSubjects},
}

// Fields returns the fixed field names of a source's group.
func Fields(src Source) []string {
	return append([]string(nil), fields[src]...)
}

// ParseSource converts a source key to a Source.
func ParseSource(s string) (Source, error) {
	src := Source(s)
	if _, ok := fields[src]; !ok {
		return "", fmt.Errorf("unknown source: %s (valid: %v)", s, AllSources)
	}
	return src, nil
}

// GroupKey returns the JSON key of the source's group in the durable file.
func GroupKey(src Source) string {
	switch src {
	case SourcePapersWithCode:
		return "papers with code categories"
	default:
		return string(src) + " categories"
	}
}

// Group maps field names to label lists.
type Group map[string][]string

// EmptyGroup returns a group with every field of src set to an empty list.
func EmptyGroup(src Source) Group {
	g := make(Group, len(fields[src]))
	for _, f := range fields[src] {
		g[f] = []string{}
	}
	return g
}

// Clone returns a deep copy; a nil group stays nil.
func (g Group) Clone() Group {
	if g == nil {
		return nil
	}
	out := make(Group, len(g))
	for k, v := range g {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = append([]string{}, v...)
	}
	return out
}

// IsEmpty reports whether field holds no labels (absent counts as empty).
func (g Group) IsEmpty(field string) bool {
	return len(g[field]) == 0
}
