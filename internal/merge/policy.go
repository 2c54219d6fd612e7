package merge

import "github.com/papercat/papercat/internal/record"

// CreateMode controls whether an unresolved paper gets a new record.
type CreateMode int

const (
	// CreateWithData creates a record only when the payload carries data.
	CreateWithData CreateMode = iota
	// CreateAlways materializes a record even from an empty payload.
	CreateAlways
	// CreateNever only enriches records that already exist.
	CreateNever
)

// String returns the mode's config name.
func (m CreateMode) String() string {
	switch m {
	case CreateAlways:
		return "always"
	case CreateNever:
		return "never"
	default:
		return "with-data"
	}
}

// Policy declares how one source's payload is folded into a record.
type Policy struct {
	Source record.Source

	// Abstract marks the abstract as fill-if-missing from this source.
	Abstract bool

	// Fields are the fill-if-missing fields of the source's group.
	Fields []string

	// Dedup lists fields reduced to unique labels before writing.
	Dedup []string

	Create CreateMode
}

func (p Policy) dedups(field string) bool {
	for _, f := range p.Dedup {
		if f == field {
			return true
		}
	}
	return false
}

// PolicyFor returns the merge policy for a source. Every field of the
// source's group is fill-if-missing.
func PolicyFor(src record.Source) Policy {
	pol := Policy{
		Source: src,
		Fields: record.Fields(src),
	}

	switch src {
	case record.SourceCrossref:
		pol.Abstract = true
		pol.Create = CreateAlways
	case record.SourceOpenAIRE:
		pol.Abstract = true
	case record.SourceOpenAlex:
		pol.Abstract = true
	case record.SourcePapersWithCode:
		pol.Abstract = true
		pol.Dedup = []string{
			record.FieldMethods,
			record.FieldCollectionName,
			record.FieldCollectionArea,
		}
	case record.SourceORKG:
		pol.Create = CreateNever
	}

	return pol
}
