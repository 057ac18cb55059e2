// Package report builds the two output sections shown for a dataset: the raw
// table and the rendered profile.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	"github.com/vincentngwk/GIT-ML-DS/internal/cache"
	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/widget"
)

// Table is the raw view of a dataset. Rows may be capped for display while
// TotalRows and TotalCols always describe the whole dataset.
type Table struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
	TotalCols int        `json:"total_cols"`
	Truncated bool       `json:"truncated"`
}

// Page is everything displayed for one dataset.
type Page struct {
	Dataset *dataset.Dataset
	Table   Table
	Report  *analysis.Report
	View    widget.View
	// Cached is true when the report came from the memo.
	Cached bool
}

// Orchestrator profiles datasets and renders the results.
type Orchestrator struct {
	profiler  analysis.Profiler
	renderer  widget.Renderer
	tableRows int
	memo      *cache.Memo[*analysis.Report]
	observe   func(source string, cached bool, err error, seconds float64)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTableRows caps the rows placed in Page.Table; 0 means all rows.
func WithTableRows(n int) Option { return func(o *Orchestrator) { o.tableRows = n } }

// WithMemoSize bounds the number of memoized reports.
func WithMemoSize(n int) Option {
	return func(o *Orchestrator) { o.memo = cache.New[*analysis.Report](n) }
}

// WithObserver is called after every profile request.
func WithObserver(fn func(source string, cached bool, err error, seconds float64)) Option {
	return func(o *Orchestrator) { o.observe = fn }
}

// New returns an Orchestrator using profiler and renderer.
func New(profiler analysis.Profiler, renderer widget.Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		profiler: profiler,
		renderer: renderer,
		memo:     cache.New[*analysis.Report](64),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Render builds the table view, then the profile, then the rendered view.
// A dataset without an ID is never memoized.
func (o *Orchestrator) Render(ctx context.Context, ds *dataset.Dataset) (*Page, error) {
	if ds == nil {
		return nil, fmt.Errorf("render: nil dataset")
	}
	page := &Page{Dataset: ds, Table: BuildTable(ds, o.tableRows)}

	rep, cached, err := o.Profile(ctx, ds)
	if err != nil {
		return nil, err
	}
	page.Report, page.Cached = rep, cached

	view, err := o.renderer.Render(rep)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	page.View = view
	return page, nil
}

// Profile returns the report for ds, computing it at most once per dataset ID.
// Callers sharing an ID share one computation; a caller whose ctx ends stops
// waiting without failing the others.
func (o *Orchestrator) Profile(ctx context.Context, ds *dataset.Dataset) (rep *analysis.Report, cached bool, err error) {
	defer func() {
		if o.observe == nil {
			return
		}
		var seconds float64
		if rep != nil && !cached {
			seconds = rep.Duration.Seconds()
		}
		o.observe(string(ds.Source), cached, err, seconds)
	}()
	run := func(ctx context.Context) (*analysis.Report, error) {
		r, err := o.profiler.Profile(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("profile dataset: %w", err)
		}
		return r, nil
	}
	if ds.ID == "" {
		rep, err = run(ctx)
		return rep, false, err
	}
	rep, cached, err = o.memo.Do(ctx, ds.ID, run)
	if err != nil && errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("profile dataset: %w", err)
	}
	return rep, cached, err
}

// Forget drops the memoized report of a dataset.
func (o *Orchestrator) Forget(id string) {
	if id != "" {
		o.memo.Invalidate(id)
	}
}

// Renderer returns the renderer the orchestrator draws with.
func (o *Orchestrator) Renderer() widget.Renderer { return o.renderer }

// BuildTable copies up to limit rows of ds; limit <= 0 copies every row.
func BuildTable(ds *dataset.Dataset, limit int) Table {
	n := ds.Nrow()
	shown := n
	if limit > 0 && shown > limit {
		shown = limit
	}
	return Table{
		Columns:   ds.Names(),
		Rows:      ds.Head(shown),
		TotalRows: n,
		TotalCols: ds.Ncol(),
		Truncated: shown < n,
	}
}
