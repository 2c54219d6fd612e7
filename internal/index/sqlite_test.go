package index

import (
	"path/filepath"
	"testing"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/record"
)

func mustRecord(t *testing.T, title, doi, abstract string) record.Record {
	t.Helper()
	rec, err := record.New(title, doi)
	if err != nil {
		t.Fatal(err)
	}
	rec.Abstract = abstract
	return rec
}

// setupTestDB creates a test database and catalog file with test data
func setupTestDB(t *testing.T) (*DB, catalog.Catalog) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	catPath := filepath.Join(tmpDir, "data.json")

	attention := mustRecord(t, "Attention Is All You Need", "10.5555/attention", "The dominant sequence transduction models are recurrent.")
	attention.Crossref[record.FieldSubjects] = []string{"Computer Science"}
	attention.PapersWithCode[record.FieldMethods] = []string{"Adam", "Multi-Head Attention"}
	attention.PapersWithCode[record.FieldTasks] = []string{"Machine Translation"}

	bert := mustRecord(t, "BERT: Pre-training of Deep Bidirectional Transformers", "10.5555/bert", "Language representation model.")
	bert.Crossref[record.FieldSubjects] = []string{"Computer Science", "Linguistics"}
	bert.PapersWithCode[record.FieldMethods] = []string{"Adam"}

	// Loaded records may lack groups entirely.
	legacy := record.Record{Title: "Statistical Methods in Genomics"}

	cat := catalog.Catalog{attention, bert, legacy}
	if err := catalog.Save(catPath, cat); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	count, err := db.RebuildFromCatalog(catPath)
	if err != nil {
		t.Fatalf("RebuildFromCatalog() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("RebuildFromCatalog() = %d, want 3", count)
	}

	return db, cat
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestDB_Rebuild_Replaces(t *testing.T) {
	db, _ := setupTestDB(t)

	if _, err := db.Rebuild(catalog.Catalog{mustRecord(t, "Only One", "", "")}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	count, _ := db.Count()
	if count != 1 {
		t.Errorf("Count() after rebuild = %d, want 1", count)
	}
	counts, _ := db.LabelCounts(record.SourcePapersWithCode, record.FieldMethods)
	if len(counts) != 0 {
		t.Errorf("stale labels survived rebuild: %v", counts)
	}
}

func TestDB_Search(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst int
	}{
		{"title word", "attention", 1, 0},
		{"abstract word", "representation", 1, 1},
		{"label word", "linguistics", 1, 1},
		{"shared label", "adam", 2, 0},
		{"special chars", "pre-training", 1, 1},
		{"no match", "quantum", 0, -1},
		{"empty", "  ", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("Search(%q) returned %d entries, want %d", tt.query, len(got), tt.wantCount)
			}
			if tt.wantCount > 0 && got[0].Index != tt.wantFirst {
				t.Errorf("Search(%q)[0].Index = %d, want %d", tt.query, got[0].Index, tt.wantFirst)
			}
		})
	}
}

func TestDB_SearchField(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.SearchField("title", "genomics", 10)
	if err != nil {
		t.Fatalf("SearchField() error = %v", err)
	}
	if len(got) != 1 || got[0].Index != 2 {
		t.Errorf("SearchField(title) = %+v", got)
	}

	got, err = db.SearchField("label", "machine translation", 10)
	if err != nil {
		t.Fatalf("SearchField() error = %v", err)
	}
	if len(got) != 1 || got[0].Index != 0 {
		t.Errorf("SearchField(label) = %+v", got)
	}

	if _, err := db.SearchField("author", "x", 10); err == nil {
		t.Error("SearchField() should reject unknown field")
	}
}

func TestDB_GetByDOI(t *testing.T) {
	db, cat := setupTestDB(t)

	e, err := db.GetByDOI(" 10.5555/BERT ")
	if err != nil {
		t.Fatalf("GetByDOI() error = %v", err)
	}
	if e == nil || e.Index != 1 || e.Record.Title != cat[1].Title {
		t.Errorf("GetByDOI() = %+v", e)
	}

	for _, doi := range []string{"", "10.1/none"} {
		e, err := db.GetByDOI(doi)
		if err != nil || e != nil {
			t.Errorf("GetByDOI(%q) = %+v, %v; want nil, nil", doi, e, err)
		}
	}
}

func TestDB_ListAll(t *testing.T) {
	db, cat := setupTestDB(t)

	all, err := db.ListAll(0)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != len(cat) {
		t.Fatalf("ListAll() returned %d entries, want %d", len(all), len(cat))
	}
	for i, e := range all {
		if e.Index != i || e.Record.Title != cat[i].Title {
			t.Errorf("entry %d = %d %q", i, e.Index, e.Record.Title)
		}
	}
	if all[2].Record.Crossref != nil {
		t.Errorf("absent group should stay absent: %v", all[2].Record.Crossref)
	}

	limited, err := db.ListAll(2)
	if err != nil {
		t.Fatalf("ListAll(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListAll(2) returned %d entries", len(limited))
	}
}

func TestDB_Missing(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.Missing(record.SourceOpenAlex, 0)
	if err != nil {
		t.Fatalf("Missing() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Missing(openalex) = %d entries, want 3", len(got))
	}

	got, err = db.Missing(record.SourceCrossref, 0)
	if err != nil {
		t.Fatalf("Missing() error = %v", err)
	}
	if len(got) != 1 || got[0].Index != 2 {
		t.Errorf("Missing(crossref) = %+v", got)
	}
}

func TestDB_LabelCounts(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.LabelCounts(record.SourceCrossref, record.FieldSubjects)
	if err != nil {
		t.Fatalf("LabelCounts() error = %v", err)
	}
	want := []LabelCount{{"Computer Science", 2}, {"Linguistics", 1}}
	if len(got) != len(want) {
		t.Fatalf("LabelCounts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LabelCounts()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"  padded  ", "padded"},
		{"", ""},
		{"pre-training", `"pre-training"`},
		{`say "hi"`, `"say ""hi"""`},
		{"10.5555/bert", `"10.5555/bert"`},
	}

	for _, tt := range tests {
		if got := prepareFTSQuery(tt.input); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
