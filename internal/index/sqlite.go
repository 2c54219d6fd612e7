// Package index maintains a disposable SQLite query cache over the catalog
// document: full-text search and label statistics. The catalog file stays
// the source of truth; the cache is rebuilt from it.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/normalize"
	"github.com/papercat/papercat/internal/record"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Entry is a cached record with its position in the catalog.
type Entry struct {
	Index  int           `json:"index"`
	Record record.Record `json:"record"`
}

// LabelCount is how many records carry a label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			pos INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			norm_title TEXT NOT NULL,
			doi TEXT,
			norm_doi TEXT,
			abstract TEXT,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_norm_title ON records(norm_title);
		CREATE INDEX IF NOT EXISTS idx_records_norm_doi ON records(norm_doi) WHERE norm_doi != '';

		-- One row per (record, source, field, label)
		CREATE TABLE IF NOT EXISTS labels (
			pos INTEGER NOT NULL,
			source TEXT NOT NULL,
			field TEXT NOT NULL,
			label TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_labels_source_field ON labels(source, field);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			pos UNINDEXED,
			title,
			abstract,
			labels_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromCatalog clears the database and rebuilds it from the catalog
// document at path.
func (d *DB) RebuildFromCatalog(path string) (int, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return 0, fmt.Errorf("reading catalog: %w", err)
	}
	return d.Rebuild(cat)
}

// Rebuild replaces the cached contents with cat.
func (d *DB) Rebuild(cat catalog.Catalog) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"records", "labels", "records_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (pos, title, norm_title, doi, norm_doi, abstract, record_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	labelStmt, err := tx.Prepare(`INSERT INTO labels (pos, source, field, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing labels insert: %w", err)
	}
	defer labelStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO records_fts (pos, title, abstract, labels_text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for pos, rec := range cat {
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshaling record %d: %w", pos, err)
		}

		_, err = recStmt.Exec(pos, rec.Title, normalize.Text(rec.Title),
			rec.DOI, normalize.Text(rec.DOI), rec.Abstract, string(recJSON))
		if err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", pos, err)
		}

		var all []string
		for _, src := range record.AllSources {
			group := rec.Group(src)
			for _, field := range record.Fields(src) {
				for _, label := range group[field] {
					if _, err := labelStmt.Exec(pos, string(src), field, label); err != nil {
						return 0, fmt.Errorf("inserting label for record %d: %w", pos, err)
					}
					all = append(all, label)
				}
			}
		}

		if _, err := ftsStmt.Exec(pos, rec.Title, rec.Abstract, strings.Join(all, "; ")); err != nil {
			return 0, fmt.Errorf("inserting fts for record %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(cat), nil
}

// Search performs a full-text search over titles, abstracts and labels.
func (d *DB) Search(query string, limit int) ([]Entry, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT pos, record_json
		FROM records
		WHERE pos IN (SELECT pos FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY pos
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SearchField performs a search on a specific field.
func (d *DB) SearchField(field, value string, limit int) ([]Entry, error) {
	var column string
	switch field {
	case "title", "abstract":
		column = field
	case "label", "labels":
		column = "labels_text"
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	ftsQuery := prepareFTSQuery(value)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT pos, record_json
		FROM records
		WHERE pos IN (SELECT pos FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY pos
		LIMIT ?
	`, column+" : ("+ftsQuery+")", limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByDOI returns the first record whose normalized DOI matches.
func (d *DB) GetByDOI(doi string) (*Entry, error) {
	norm := normalize.Text(doi)
	if norm == "" {
		return nil, nil
	}
	row := d.db.QueryRow(`SELECT pos, record_json FROM records WHERE norm_doi = ? ORDER BY pos LIMIT 1`, norm)
	return scanEntry(row)
}

// ListAll returns all records in catalog order, optionally limited.
func (d *DB) ListAll(limit int) ([]Entry, error) {
	query := `SELECT pos, record_json FROM records ORDER BY pos`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Missing returns records holding no label from src.
func (d *DB) Missing(src record.Source, limit int) ([]Entry, error) {
	query := `
		SELECT pos, record_json FROM records
		WHERE pos NOT IN (SELECT pos FROM labels WHERE source = ?)
		ORDER BY pos`
	args := []interface{}{string(src)}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records missing %s: %w", src, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LabelCounts returns how many records carry each label of one field,
// most frequent first.
func (d *DB) LabelCounts(src record.Source, field string) ([]LabelCount, error) {
	rows, err := d.db.Query(`
		SELECT label, COUNT(DISTINCT pos) AS n
		FROM labels
		WHERE source = ? AND field = ?
		GROUP BY label
		ORDER BY n DESC, label
	`, string(src), field)
	if err != nil {
		return nil, fmt.Errorf("counting labels: %w", err)
	}
	defer rows.Close()

	var counts []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, lc)
	}
	return counts, rows.Err()
}

// Count returns the total number of records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var recJSON string
	if err := s.Scan(&e.Index, &recJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(recJSON), &e.Record); err != nil {
		return nil, fmt.Errorf("parsing cached record %d: %w", e.Index, err)
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, rows.Err()
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
