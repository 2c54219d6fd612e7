package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/papercat/papercat/internal/record"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"PapercatPath", PapercatPath, "/test/repo/.papercat"},
		{"ConfigPath", ConfigPath, "/test/repo/.papercat/config.json"},
		{"CatalogPath", CatalogPath, "/test/repo/.papercat/data.json"},
		{"CachePath", CachePath, "/test/repo/.papercat/cache"},
		{"DBPath", DBPath, "/test/repo/.papercat/cache/catalog.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, PapercatDir), 0755); err != nil {
		t.Fatalf("Failed to create .papercat: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, PapercatDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .papercat file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .papercat is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "notes", "2024")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, PapercatDir), 0755); err != nil {
		t.Fatalf("Failed to create .papercat: %v", err)
	}

	found, err := FindRepository(nestedDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != repoDir {
		t.Errorf("FindRepository() = %q, want %q", found, repoDir)
	}

	found, err = FindRepository(repoDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != repoDir {
		t.Errorf("FindRepository() = %q, want %q", found, repoDir)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	if _, err := FindRepository(t.TempDir()); err == nil {
		t.Error("FindRepository() should return error when no repo found")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(PapercatPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .papercat: %v", err)
	}

	cfg := &Config{
		CodeIndexPath: "dumps/papers_with_abstracts.json",
		Sources:       []string{"crossref", "openalex"},
		Mailto:        "dev@example.org",
	}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoad_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(PapercatPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error when config doesn't exist")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(PapercatPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestPipelineSources(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		want    []record.Source
		wantErr bool
	}{
		{"empty uses default", nil, nil, false},
		{"ordered subset", []string{"openalex", "crossref"}, []record.Source{record.SourceOpenAlex, record.SourceCrossref}, false},
		{"unknown", []string{"arxiv"}, nil, true},
		{"no adapter", []string{"orkg"}, nil, true},
		{"duplicate", []string{"pwc", "pwc"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&Config{Sources: tt.sources}).PipelineSources()
			if (err != nil) != tt.wantErr {
				t.Fatalf("PipelineSources() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PipelineSources() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCodeIndexPath(t *testing.T) {
	cfg := &Config{CodeIndexPath: "dumps/pwc.json"}
	if got := cfg.ResolveCodeIndexPath("/repo"); got != "/repo/dumps/pwc.json" {
		t.Errorf("relative = %q", got)
	}

	cfg.CodeIndexPath = "/data/pwc.json"
	if got := cfg.ResolveCodeIndexPath("/repo"); got != "/data/pwc.json" {
		t.Errorf("absolute = %q", got)
	}

	cfg.CodeIndexPath = ""
	if got := cfg.ResolveCodeIndexPath("/repo"); got != "" {
		t.Errorf("unset = %q", got)
	}
}

func TestValidateCodeIndexPath(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "pwc.json")
	if err := os.WriteFile(file, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", false},
		{"valid file", file, false},
		{"directory", tmpDir, true},
		{"missing", filepath.Join(tmpDir, "absent.json"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCodeIndexPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCodeIndexPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	if got := ExpandPath("~/papers"); got != filepath.Join(home, "papers") {
		t.Errorf("ExpandPath(~/papers) = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q", got)
	}
}
