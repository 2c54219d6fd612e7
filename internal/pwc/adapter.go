// Package pwc adapts a local Papers-with-Code dump, the code/benchmark
// index, to the source contract.
package pwc

import (
	"context"
	"sync"

	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

// DefaultDumpFile is the dump file name used when none is configured.
const DefaultDumpFile = "papers_with_abstracts.json"

// Adapter serves lookups from the dump. The dump is read on first use and
// kept for the adapter's lifetime.
type Adapter struct {
	path string

	once sync.Once
	dump *Dump
	err  error
}

// New creates an adapter reading the dump at path.
func New(path string) *Adapter {
	if path == "" {
		path = DefaultDumpFile
	}
	return &Adapter{path: path}
}

// NewFromDump creates an adapter over an already loaded dump.
func NewFromDump(d *Dump) *Adapter {
	a := &Adapter{dump: d}
	a.once.Do(func() {})
	return a
}

// Path returns the dump path.
func (a *Adapter) Path() string {
	return a.path
}

// Source implements source.Adapter.
func (a *Adapter) Source() record.Source {
	return record.SourcePapersWithCode
}

// Fetch implements source.Adapter. The dump carries no DOIs, so papers are
// looked up by title only.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) (*source.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.once.Do(func() {
		a.dump, a.err = LoadDump(a.path)
	})
	if a.err != nil {
		return nil, a.err
	}

	p, ok := a.dump.Lookup(q.Title)
	if !ok {
		return nil, nil
	}
	return ToPayload(p), nil
}

// ToPayload maps a dump entry onto the papers-with-code group. Tasks are
// passed through as listed.
func ToPayload(p Paper) *source.Payload {
	methods, collections, areas := p.Labels()

	tasks := p.Tasks
	if tasks == nil {
		tasks = []string{}
	}

	return &source.Payload{
		Title:    p.Title,
		Abstract: p.Abstract,
		Fields: record.Group{
			record.FieldTasks:          tasks,
			record.FieldMethods:        methods,
			record.FieldCollectionName: collections,
			record.FieldCollectionArea: areas,
		},
	}
}
