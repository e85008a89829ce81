package pipeline

import (
	"strconv"

	"github.com/c360studio/annograph/graph"
)

// viewIDPrefix prefixes generated view identifiers.
const viewIDPrefix = "v_"

// ViewBuilder opens output views on a graph. Every opened view is appended
// to the graph immediately and stamped with the producer identity and one
// declared annotation type.
type ViewBuilder struct {
	g        *graph.Graph
	alloc    *Allocator
	producer string
}

// NewViewBuilder creates a ViewBuilder writing to g on behalf of producer.
func NewViewBuilder(g *graph.Graph, alloc *Allocator, producer string) *ViewBuilder {
	return &ViewBuilder{g: g, alloc: alloc, producer: producer}
}

// OpenView creates a new view, appends it to the graph, and returns it for
// annotation appends. anchorDocID pairs the declared type with a single
// top-level document; pass "" when the view will hold annotations over
// multiple source documents.
//
// View ids come from the run-scoped view counter, skipping ids already
// taken in the graph, so ids of new views are always disjoint from
// pre-existing view ids.
func (b *ViewBuilder) OpenView(declaredType, anchorDocID string) *graph.View {
	id := viewIDPrefix + strconv.Itoa(b.alloc.NextView())
	for b.g.HasViewID(id) {
		id = viewIDPrefix + strconv.Itoa(b.alloc.NextView())
	}

	v := &graph.View{
		ID:       id,
		Metadata: graph.ViewMetadata{App: b.producer},
	}
	v.NewContain(declaredType, anchorDocID)
	b.g.AppendView(v)
	return v
}
