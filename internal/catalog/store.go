package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformed indicates the durable catalog document could not be parsed.
var ErrMalformed = errors.New("malformed catalog document")

// indent is the durable file's indentation unit.
const indent = "    "

// Load reads the catalog document at path. A missing or empty file yields an
// empty catalog; a document that is not a JSON array of records is an error.
// Records are taken as written: a null or blank title loads as "" and is
// never matched by title.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Catalog{}, nil
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if cat == nil {
		cat = Catalog{}
	}

	return cat, nil
}

// Encode renders the catalog in the durable layout: multi-line, indented,
// UTF-8 text left unescaped.
func Encode(cat Catalog) ([]byte, error) {
	if cat == nil {
		cat = Catalog{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cat); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Save replaces the document at path with the whole catalog. The write goes
// through a temporary file in the same directory so a failed save leaves the
// previous document intact.
func Save(path string, cat Catalog) error {
	data, err := Encode(cat)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp catalog file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing catalog: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting catalog permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing catalog: %w", err)
	}

	return nil
}

// FileStore loads and saves the catalog document at Path.
type FileStore struct {
	Path string
}

// Load implements the orchestrator's store contract.
func (s FileStore) Load() (Catalog, error) {
	return Load(s.Path)
}

// Save implements the orchestrator's store contract.
func (s FileStore) Save(cat Catalog) error {
	return Save(s.Path, cat)
}
