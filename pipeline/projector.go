package pipeline

import (
	"context"
	"fmt"

	"github.com/c360studio/annograph/analysis"
	"github.com/c360studio/annograph/graph"
	"github.com/c360studio/annograph/resolve"
)

// Projector runs the analyzer over one document and writes the results into
// a target view as annotations anchored to the source document.
type Projector struct {
	alloc    *Allocator
	resolver *resolve.Resolver
	analyzer analysis.Analyzer
	idPrefix string
}

// NewProjector creates a Projector. idPrefix scopes the annotation ids this
// projector allocates; the runner derives it from the input graph so two
// runs over different graphs never collide when their outputs are merged.
func NewProjector(alloc *Allocator, resolver *resolve.Resolver, analyzer analysis.Analyzer, idPrefix string) *Projector {
	return &Projector{alloc: alloc, resolver: resolver, analyzer: analyzer, idPrefix: idPrefix}
}

// Project resolves the document's text, analyzes it, and appends one
// annotation per result span to targetView, in emission order.
//
// anchorID is the qualified document reference. The per-annotation document
// property is set only when the anchor carries a view qualifier; a
// single-document top-level view already names its document in the contain
// declaration.
//
// A resolution failure aborts only this document's projection; the caller
// records the diagnostic and continues with remaining documents.
func (p *Projector) Project(ctx context.Context, doc *graph.Document, targetView *graph.View, anchorID string) error {
	text, err := p.resolveText(ctx, doc)
	if err != nil {
		return err
	}

	qualified := graph.IsQualified(anchorID)
	for _, span := range p.analyzer.Analyze(text) {
		a := targetView.NewAnnotation(p.alloc.Next(p.idPrefix), p.analyzer.Produces())
		a.Start = span.Start
		a.End = span.End
		a.Text = text[span.Start:span.End]
		if qualified {
			a.Document = anchorID
		}
	}
	return nil
}

// resolveText returns the document's text. Inline text wins; the location
// is never dereferenced when inline text is present. A text document with
// neither source is a data-integrity error, not a silent skip.
func (p *Projector) resolveText(ctx context.Context, doc *graph.Document) (string, error) {
	if doc.Text != "" {
		return doc.Text, nil
	}
	if doc.Location == "" {
		return "", &resolve.UnreadableError{
			Location: "",
			Err:      fmt.Errorf("document %q declares no inline text and no location", doc.ID),
		}
	}
	return p.resolver.Resolve(ctx, doc.Location)
}
