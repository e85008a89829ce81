package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/c360studio/annograph/analysis"
	"github.com/c360studio/annograph/graph"
	"github.com/c360studio/annograph/resolve"
)

// Diagnostic records a per-document failure that did not abort the run.
type Diagnostic struct {
	// AnchorID is the qualified id of the document that failed.
	AnchorID string `json:"anchor_id"`

	// Message is the failure description.
	Message string `json:"message"`
}

// Result summarizes one completed run. The graph itself is mutated in
// place: new views are appended, nothing else changes.
type Result struct {
	// NewViews lists the ids of views this run created, in creation order.
	NewViews []string `json:"new_views"`

	// Annotations is the total number of annotations produced.
	Annotations int `json:"annotations"`

	// Diagnostics lists documents that could not be read. The run still
	// completed for every other document (partial success).
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Config configures a Runner.
type Config struct {
	// Producer is the opaque identity stamped on every created view.
	Producer string

	// Analyzer is the text-analysis function run over each document.
	Analyzer analysis.Analyzer

	// Resolver dereferences external document locations. Defaults to
	// resolve.NewDefault().
	Resolver *resolve.Resolver
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Producer == "" {
		return fmt.Errorf("Producer is required")
	}
	if c.Analyzer == nil {
		return fmt.Errorf("Analyzer is required")
	}
	return nil
}

// Runner executes the annotation pipeline over one graph at a time. The
// allocator is owned by the Runner and reset at the start of every run, so
// identifiers are runwide-monotonic and two Runners never share counters.
type Runner struct {
	config   Config
	alloc    *Allocator
	resolver *resolve.Resolver
}

// NewRunner creates a Runner with the given configuration.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = resolve.NewDefault()
	}
	return &Runner{
		config:   cfg,
		alloc:    NewAllocator(),
		resolver: resolver,
	}, nil
}

// Run processes the graph: one new view per top-level text document, then
// one new view per pre-existing view holding text documents. Malformed
// input aborts before any view is created; unreadable documents are
// collected as diagnostics and the run continues.
func (r *Runner) Run(ctx context.Context, g *graph.Graph) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	r.alloc.Reset()

	// Snapshot before any view is appended: views created below must not
	// be visited by the nested-document pass.
	walker := NewWalker(g)
	builder := NewViewBuilder(g, r.alloc, r.config.Producer)
	projector := NewProjector(r.alloc, r.resolver, r.config.Analyzer, annotationScope(g))

	result := &Result{}

	for _, doc := range walker.TopLevelTextDocuments() {
		view := builder.OpenView(r.config.Analyzer.Produces(), doc.ID)
		result.NewViews = append(result.NewViews, view.ID)
		r.project(ctx, projector, doc, view, graph.AnchorID("", doc.ID), result)
	}

	for _, vd := range walker.ViewsWithTextDocuments() {
		view := builder.OpenView(r.config.Analyzer.Produces(), "")
		result.NewViews = append(result.NewViews, view.ID)
		for _, doc := range vd.Documents {
			r.project(ctx, projector, doc, view, graph.AnchorID(vd.View.ID, doc.ID), result)
		}
	}

	return result, nil
}

// annotationScope derives the annotation id prefix from the input graph.
// The prefix is a pure function of graph content: an identical run on an
// identical graph reproduces the identical id sequence, while runs over
// different graphs produce disjoint ids even when outputs are later merged.
func annotationScope(g *graph.Graph) string {
	data, err := g.Serialize()
	if err != nil {
		// Validate already accepted the graph; serialization cannot fail
		// for it. Keep a stable fallback anyway.
		return "t"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:4]) + "-t"
}

func (r *Runner) project(ctx context.Context, projector *Projector, doc *graph.Document, view *graph.View, anchorID string, result *Result) {
	before := len(view.Annotations)
	if err := projector.Project(ctx, doc, view, anchorID); err != nil {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			AnchorID: anchorID,
			Message:  err.Error(),
		})
		return
	}
	result.Annotations += len(view.Annotations) - before
}
