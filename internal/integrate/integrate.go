// Package integrate runs every registered source against one paper and folds
// the results into the catalog, saving once at the end.
package integrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/merge"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

// Store loads and persists the whole catalog.
type Store interface {
	Load() (catalog.Catalog, error)
	Save(cat catalog.Catalog) error
}

// Paper is one integration request.
type Paper struct {
	Title string
	DOI   string
}

// Integrator drives the adapters of a registry.
type Integrator struct {
	registry Registry
	policies map[record.Source]merge.Policy
	progress func(Paper, Step)
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithPolicy overrides the merge policy of one source.
func WithPolicy(pol merge.Policy) Option {
	return func(in *Integrator) {
		in.policies[pol.Source] = pol
	}
}

// WithProgress registers a callback invoked after every step.
func WithProgress(fn func(Paper, Step)) Option {
	return func(in *Integrator) {
		in.progress = fn
	}
}

// New creates an Integrator over registry.
func New(registry Registry, opts ...Option) *Integrator {
	in := &Integrator{
		registry: registry,
		policies: make(map[record.Source]merge.Policy),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Integrator) policy(src record.Source) merge.Policy {
	if pol, ok := in.policies[src]; ok {
		return pol
	}
	return merge.PolicyFor(src)
}

// Integrate runs every adapter in registry order for one paper and returns
// the updated catalog. Adapter failures are recorded in the report and do
// not stop later adapters. The only error returned is context cancellation
// or an internal merge failure.
func (in *Integrator) Integrate(ctx context.Context, cat catalog.Catalog, title, doi string) (catalog.Catalog, Report, error) {
	paper := Paper{Title: title, DOI: doi}
	rep := Report{Title: title, DOI: doi, Index: catalog.NotFound}
	q := source.Query{Title: title, DOI: doi}

	for _, adapter := range in.registry {
		if err := ctx.Err(); err != nil {
			return cat, rep, err
		}

		src := adapter.Source()
		idx, _ := catalog.Resolve(cat, title, doi)

		step := Step{Source: src, Index: idx}
		payload, err := fetch(ctx, adapter, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cat, rep, ctxErr
			}
			step.Status = StatusError
			step.Error = err.Error()
			payload = nil
		}

		var res merge.Result
		cat, res, err = merge.Apply(cat, idx, title, doi, payload, in.policy(src))
		switch {
		case errors.Is(err, merge.ErrMissingTitle):
			step.Status = StatusSkipped
			step.Error = err.Error()
		case err != nil:
			return cat, rep, fmt.Errorf("merging %s result: %w", src, err)
		default:
			step.Index = res.Index
			step.Created = res.Created
			step.Filled = res.Filled
			if step.Status == "" {
				step.Status = stepStatus(payload, res)
			}
		}

		if res.Index != catalog.NotFound {
			rep.Index = res.Index
		}
		rep.Created = rep.Created || res.Created
		rep.Changed = rep.Changed || res.Changed
		rep.Steps = append(rep.Steps, step)

		if in.progress != nil {
			in.progress(paper, step)
		}
	}

	return cat, rep, nil
}

// ErrAdapterPanic wraps a panic raised inside an adapter's Fetch.
var ErrAdapterPanic = errors.New("adapter panicked")

// fetch calls the adapter and turns a panic into an error for that step.
func fetch(ctx context.Context, adapter source.Adapter, q source.Query) (payload *source.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("%w: %s: %v", ErrAdapterPanic, adapter.Source(), r)
		}
	}()
	return adapter.Fetch(ctx, q)
}

func stepStatus(payload *source.Payload, res merge.Result) Status {
	switch {
	case res.Changed:
		return StatusUpdated
	case payload == nil:
		return StatusNoData
	default:
		return StatusUnchanged
	}
}

// Run loads the catalog, integrates one paper and saves the catalog once.
// Nothing is saved when integration is cancelled.
func (in *Integrator) Run(ctx context.Context, store Store, title, doi string) (Report, error) {
	cat, err := store.Load()
	if err != nil {
		return Report{}, fmt.Errorf("loading catalog: %w", err)
	}

	cat, rep, err := in.Integrate(ctx, cat, title, doi)
	if err != nil {
		return rep, err
	}

	if err := store.Save(cat); err != nil {
		return rep, fmt.Errorf("saving catalog: %w", err)
	}
	return rep, nil
}

// RunBatch integrates several papers after a single load, saving after each
// paper so an interrupted batch keeps the papers already finished.
func (in *Integrator) RunBatch(ctx context.Context, store Store, papers []Paper) ([]Report, error) {
	cat, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	reports := make([]Report, 0, len(papers))
	for _, p := range papers {
		var rep Report
		cat, rep, err = in.Integrate(ctx, cat, p.Title, p.DOI)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)

		if err := store.Save(cat); err != nil {
			return reports, fmt.Errorf("saving catalog after %q: %w", p.Title, err)
		}
	}
	return reports, nil
}
