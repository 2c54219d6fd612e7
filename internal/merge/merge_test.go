package merge

import (
	"errors"
	"reflect"
	"testing"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

func subjects(labels ...string) *source.Payload {
	return &source.Payload{Fields: record.Group{record.FieldSubjects: labels}}
}

func mustApply(t *testing.T, cat catalog.Catalog, idx int, title, doi string, p *source.Payload, pol Policy) (catalog.Catalog, Result) {
	t.Helper()
	cat, res, err := Apply(cat, idx, title, doi, p, pol)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return cat, res
}

func TestApply_CreatesRecord(t *testing.T) {
	cat, res := mustApply(t, catalog.Catalog{}, catalog.NotFound,
		"Attention Is All You Need", "10.5555/example",
		subjects("Computer Science"), PolicyFor(record.SourceCrossref))

	if !res.Created || !res.Changed || res.Index != 0 {
		t.Errorf("Result = %+v, want created at 0", res)
	}
	if len(cat) != 1 {
		t.Fatalf("catalog has %d records, want 1", len(cat))
	}

	rec := cat[0]
	if rec.Title != "Attention Is All You Need" || rec.DOI != "10.5555/example" || rec.Abstract != "" {
		t.Errorf("record identity = %q / %q / %q", rec.Title, rec.DOI, rec.Abstract)
	}
	if got := rec.Crossref[record.FieldSubjects]; !reflect.DeepEqual(got, []string{"Computer Science"}) {
		t.Errorf("crossref subjects = %v", got)
	}
	for _, src := range []record.Source{record.SourceORKG, record.SourcePapersWithCode, record.SourceOpenAlex, record.SourceOpenAIRE} {
		if rec.HasLabels(src) {
			t.Errorf("group %s should be empty: %v", src, rec.Group(src))
		}
		if rec.Group(src) == nil {
			t.Errorf("group %s should be materialized", src)
		}
	}
}

func TestApply_CreateModes(t *testing.T) {
	tests := []struct {
		name        string
		mode        CreateMode
		payload     *source.Payload
		wantCreated bool
	}{
		{"always with nil payload", CreateAlways, nil, true},
		{"always with empty payload", CreateAlways, subjects(), true},
		{"with-data and nil payload", CreateWithData, nil, false},
		{"with-data and empty payload", CreateWithData, subjects(), false},
		{"with-data and labels", CreateWithData, subjects("CS"), true},
		{"with-data and abstract only", CreateWithData, &source.Payload{Abstract: "text"}, true},
		{"never", CreateNever, subjects("CS"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pol := PolicyFor(record.SourceOpenAIRE)
			pol.Create = tt.mode

			cat, res := mustApply(t, nil, catalog.NotFound, "Title", "", tt.payload, pol)
			if res.Created != tt.wantCreated || res.Changed != tt.wantCreated {
				t.Errorf("Result = %+v, want created=%v", res, tt.wantCreated)
			}
			wantLen := 0
			if tt.wantCreated {
				wantLen = 1
			}
			if len(cat) != wantLen {
				t.Errorf("catalog has %d records, want %d", len(cat), wantLen)
			}
		})
	}
}

func TestApply_MissingTitleRejected(t *testing.T) {
	cat := catalog.Catalog{{Title: "Existing"}}

	for _, title := range []string{"", "   "} {
		got, res, err := Apply(cat, catalog.NotFound, title, "10.1/x", subjects("CS"), PolicyFor(record.SourceCrossref))
		if !errors.Is(err, ErrMissingTitle) {
			t.Errorf("Apply(title=%q) error = %v, want ErrMissingTitle", title, err)
		}
		if len(got) != 1 || res.Changed || res.Created {
			t.Errorf("catalog mutated on rejected payload: len=%d result=%+v", len(got), res)
		}
	}
}

func TestApply_ExistingTitleNeverOverwritten(t *testing.T) {
	rec, _ := record.New("Original Title", "10.1/x")
	cat := catalog.Catalog{rec}

	p := subjects("CS")
	p.Title = "Different Title From Source"
	cat, _ = mustApply(t, cat, 0, "", "", p, PolicyFor(record.SourceCrossref))

	if cat[0].Title != "Original Title" {
		t.Errorf("Title = %q, want unchanged", cat[0].Title)
	}
}

func TestApply_FillIfMissing(t *testing.T) {
	rec, _ := record.New("Paper", "")
	rec.Abstract = "kept abstract"
	rec.OpenAlex[record.FieldTopics] = []string{"Existing"}
	cat := catalog.Catalog{rec}

	p := &source.Payload{
		Abstract: "new abstract",
		Fields: record.Group{
			record.FieldTopics:        {"Replacement"},
			record.FieldConcepts:      {"Physics", "Math"},
			record.FieldPrimaryTopics: {},
		},
	}

	cat, res := mustApply(t, cat, 0, "Paper", "", p, PolicyFor(record.SourceOpenAlex))

	got := cat[0]
	if got.Abstract != "kept abstract" {
		t.Errorf("Abstract overwritten: %q", got.Abstract)
	}
	if !reflect.DeepEqual(got.OpenAlex[record.FieldTopics], []string{"Existing"}) {
		t.Errorf("topics overwritten: %v", got.OpenAlex[record.FieldTopics])
	}
	if !reflect.DeepEqual(got.OpenAlex[record.FieldConcepts], []string{"Physics", "Math"}) {
		t.Errorf("concepts not filled: %v", got.OpenAlex[record.FieldConcepts])
	}
	if len(got.OpenAlex[record.FieldPrimaryTopics]) != 0 {
		t.Errorf("primary topics = %v, want empty", got.OpenAlex[record.FieldPrimaryTopics])
	}
	if !res.Changed || res.Created {
		t.Errorf("Result = %+v, want changed, not created", res)
	}
	if !reflect.DeepEqual(res.Filled, []string{"openalex categories.concepts"}) {
		t.Errorf("Filled = %v", res.Filled)
	}
}

func TestApply_FillsAbsentGroupAndAbstract(t *testing.T) {
	cat := catalog.Catalog{{Title: "Legacy"}}

	p := &source.Payload{Abstract: "  An abstract.  ", Fields: record.Group{record.FieldSubjects: {"Open Access"}}}
	cat, res := mustApply(t, cat, 0, "Legacy", "", p, PolicyFor(record.SourceOpenAIRE))

	if cat[0].Abstract != "An abstract." {
		t.Errorf("Abstract = %q", cat[0].Abstract)
	}
	if !reflect.DeepEqual(cat[0].OpenAIRE[record.FieldSubjects], []string{"Open Access"}) {
		t.Errorf("openaire subjects = %v", cat[0].OpenAIRE)
	}
	if cat[0].Crossref != nil {
		t.Errorf("untouched group materialized: %v", cat[0].Crossref)
	}
	if !res.Changed {
		t.Error("Changed = false")
	}
}

func TestApply_NoResultOnExistingRecord(t *testing.T) {
	rec, _ := record.New("Paper", "")
	cat := catalog.Catalog{rec}

	cat, res := mustApply(t, cat, 0, "Paper", "", nil, PolicyFor(record.SourceCrossref))
	if res.Changed || res.Created || res.Index != 0 {
		t.Errorf("Result = %+v, want unchanged match at 0", res)
	}
	if len(cat) != 1 {
		t.Errorf("catalog has %d records", len(cat))
	}
}

func TestApply_EmptyPayloadValuesNotWritten(t *testing.T) {
	cat := catalog.Catalog{{Title: "Legacy"}}
	cat, res := mustApply(t, cat, 0, "Legacy", "", subjects(), PolicyFor(record.SourceCrossref))

	if res.Changed {
		t.Errorf("Changed = true for empty payload")
	}
	if cat[0].Crossref != nil {
		t.Errorf("group materialized from empty payload: %v", cat[0].Crossref)
	}
}

func TestApply_InvalidIndex(t *testing.T) {
	cat := catalog.Catalog{{Title: "A"}}
	for _, idx := range []int{1, 5, -2} {
		if _, _, err := Apply(cat, idx, "A", "", subjects("x"), PolicyFor(record.SourceCrossref)); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("Apply(idx=%d) error = %v, want ErrInvalidIndex", idx, err)
		}
	}
}

func TestApply_CreateKeepsCallerDOI(t *testing.T) {
	p := &source.Payload{DOI: "https://doi.org/10.1/ABC", Fields: record.Group{record.FieldTopics: {"T"}}}
	cat, _ := mustApply(t, nil, catalog.NotFound, "Paper", "", p, PolicyFor(record.SourceOpenAlex))
	if cat[0].DOI != "" {
		t.Errorf("DOI = %q, want empty: source DOI from a title search must not be stored", cat[0].DOI)
	}
	if idx, ok := catalog.Resolve(cat, "Another Paper", "10.1/ABC"); ok {
		t.Errorf("Resolve() matched record %d through a source-reported DOI", idx)
	}

	cat, _ = mustApply(t, nil, catalog.NotFound, "Paper", "10.9/query", p, PolicyFor(record.SourceOpenAlex))
	if cat[0].DOI != "10.9/query" {
		t.Errorf("DOI = %q, want query DOI", cat[0].DOI)
	}
}

func TestApply_Idempotent(t *testing.T) {
	payloads := []struct {
		src record.Source
		p   *source.Payload
	}{
		{record.SourceCrossref, subjects("Computer Science", "Computer Science")},
		{record.SourceOpenAIRE, &source.Payload{Abstract: "abs", Fields: record.Group{record.FieldSubjects: {"a", "b"}}}},
		{record.SourceOpenAlex, &source.Payload{Fields: record.Group{record.FieldTopics: {"x"}, record.FieldConcepts: {"y"}}}},
		{record.SourcePapersWithCode, &source.Payload{Fields: record.Group{
			record.FieldTasks:   {"Translation", "Translation"},
			record.FieldMethods: {"ResNet", "ResNet", "VGG"},
		}}},
	}

	for _, tt := range payloads {
		t.Run(string(tt.src), func(t *testing.T) {
			pol := PolicyFor(tt.src)
			once, _ := mustApply(t, nil, catalog.NotFound, "Paper", "", tt.p, pol)
			snapshot := once.Clone()

			twice, res := mustApply(t, once, 0, "Paper", "", tt.p, pol)
			if res.Changed {
				t.Errorf("second application reported a change: %+v", res)
			}
			if !reflect.DeepEqual(snapshot, twice) {
				t.Errorf("second application changed the record:\n%+v\n%+v", snapshot, twice)
			}
		})
	}
}

func TestApply_CommutesAcrossSources(t *testing.T) {
	a := subjects("Computer Science")
	b := &source.Payload{Fields: record.Group{
		record.FieldTopics:   {"Machine Learning"},
		record.FieldConcepts: {"Attention"},
	}}
	polA := PolicyFor(record.SourceCrossref)
	polB := PolicyFor(record.SourceOpenAlex)

	fresh := func() catalog.Catalog {
		rec, _ := record.New("Paper", "10.1/p")
		return catalog.Catalog{rec}
	}

	ab, _ := mustApply(t, fresh(), 0, "Paper", "", a, polA)
	ab, _ = mustApply(t, ab, 0, "Paper", "", b, polB)

	ba, _ := mustApply(t, fresh(), 0, "Paper", "", b, polB)
	ba, _ = mustApply(t, ba, 0, "Paper", "", a, polA)

	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("merge order matters:\nA,B = %+v\nB,A = %+v", ab, ba)
	}
}

func TestApply_DedupMethods(t *testing.T) {
	p := &source.Payload{Fields: record.Group{
		record.FieldTasks:          {"Image Classification", "Image Classification"},
		record.FieldMethods:        {"ResNet", "ResNet", "VGG"},
		record.FieldCollectionName: {"Convolutional Neural Networks", "Convolutional Neural Networks"},
		record.FieldCollectionArea: {"Computer Vision", "", "Computer Vision"},
	}}

	cat, _ := mustApply(t, nil, catalog.NotFound, "Paper", "", p, PolicyFor(record.SourcePapersWithCode))
	g := cat[0].PapersWithCode

	if !reflect.DeepEqual(g[record.FieldMethods], []string{"ResNet", "VGG"}) {
		t.Errorf("methods = %v, want [ResNet VGG]", g[record.FieldMethods])
	}
	if !reflect.DeepEqual(g[record.FieldCollectionName], []string{"Convolutional Neural Networks"}) {
		t.Errorf("collection names = %v", g[record.FieldCollectionName])
	}
	if !reflect.DeepEqual(g[record.FieldCollectionArea], []string{"Computer Vision"}) {
		t.Errorf("collection areas = %v", g[record.FieldCollectionArea])
	}
	if !reflect.DeepEqual(g[record.FieldTasks], []string{"Image Classification", "Image Classification"}) {
		t.Errorf("tasks = %v, want verbatim", g[record.FieldTasks])
	}
}

func TestApply_DoesNotAliasPayload(t *testing.T) {
	p := subjects("CS")
	cat, _ := mustApply(t, nil, catalog.NotFound, "Paper", "", p, PolicyFor(record.SourceCrossref))
	p.Fields[record.FieldSubjects][0] = "mutated"

	if cat[0].Crossref[record.FieldSubjects][0] != "CS" {
		t.Error("record shares label storage with the payload")
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"b", "a", "b", " ", "", "a"})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Unique() = %v", got)
	}
	if got := Unique(nil); got == nil || len(got) != 0 {
		t.Errorf("Unique(nil) = %#v, want empty non-nil", got)
	}
}

func TestPolicyFor(t *testing.T) {
	if PolicyFor(record.SourceCrossref).Create != CreateAlways {
		t.Error("crossref should always materialize a record")
	}
	if PolicyFor(record.SourceORKG).Create != CreateNever {
		t.Error("orkg should never create records")
	}
	pwc := PolicyFor(record.SourcePapersWithCode)
	if pwc.dedups(record.FieldTasks) || !pwc.dedups(record.FieldMethods) {
		t.Errorf("pwc dedup = %v", pwc.Dedup)
	}
	for _, src := range record.AllSources {
		if !reflect.DeepEqual(PolicyFor(src).Fields, record.Fields(src)) {
			t.Errorf("%s policy fields = %v", src, PolicyFor(src).Fields)
		}
	}
}
