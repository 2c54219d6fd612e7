// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercat/papercat/internal/record"
)

// Config represents repository configuration stored in .papercat/config.json.
type Config struct {
	CodeIndexPath string   `json:"code_index_path,omitempty"` // Path to papers_with_abstracts.json
	Sources       []string `json:"sources,omitempty"`         // Pipeline order; empty means all
	Mailto        string   `json:"mailto,omitempty"`          // Contact address for polite API pools
}

const (
	PapercatDir = ".papercat"
	ConfigFile  = "config.json"
	CatalogFile = "data.json"
	CacheDir    = "cache"
	DBFile      = "catalog.db"
)

// PapercatPath returns the path to the .papercat directory from a root path.
func PapercatPath(root string) string {
	return filepath.Join(root, PapercatDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, PapercatDir, ConfigFile)
}

// CatalogPath returns the path to the catalog document from a root path.
func CatalogPath(root string) string {
	return filepath.Join(root, PapercatDir, CatalogFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, PapercatDir, CacheDir)
}

// DBPath returns the path to catalog.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, PapercatDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a papercat repository.
func IsRepository(root string) bool {
	info, err := os.Stat(PapercatPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a papercat repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a papercat repository (no %s directory found)", PapercatDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// PipelineSources parses the configured source list. An empty list yields
// nil so callers fall back to the default pipeline.
func (c *Config) PipelineSources() ([]record.Source, error) {
	if len(c.Sources) == 0 {
		return nil, nil
	}
	out := make([]record.Source, 0, len(c.Sources))
	seen := make(map[record.Source]bool)
	for _, name := range c.Sources {
		src, err := record.ParseSource(name)
		if err != nil {
			return nil, err
		}
		if src == record.SourceORKG {
			return nil, fmt.Errorf("source %q has no adapter", name)
		}
		if seen[src] {
			return nil, fmt.Errorf("source %q listed twice", name)
		}
		seen[src] = true
		out = append(out, src)
	}
	return out, nil
}

// ResolveCodeIndexPath returns the code-index dump path, relative paths being
// taken from the repository root.
func (c *Config) ResolveCodeIndexPath(root string) string {
	if c.CodeIndexPath == "" {
		return ""
	}
	p := ExpandPath(c.CodeIndexPath)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}

// ValidateCodeIndexPath checks that the dump path exists and is a file.
func ValidateCodeIndexPath(path string) error {
	if path == "" {
		return nil // Empty is allowed (not yet configured)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", expandedPath)
	}

	return nil
}

// ValidateSources checks every name is a source with an adapter.
func ValidateSources(names []string) error {
	_, err := (&Config{Sources: names}).PipelineSources()
	return err
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
