package pipeline

import "github.com/c360studio/annograph/graph"

// ViewDocuments pairs a pre-existing view with the text documents it holds,
// in the view's own document order.
type ViewDocuments struct {
	View      *graph.View
	Documents []*graph.Document
}

// Walker enumerates the text-bearing documents of one graph. The view list
// is snapshotted at construction: views appended during the run do not
// affect which views the walker visits.
type Walker struct {
	g        *graph.Graph
	snapshot []*graph.View
}

// NewWalker creates a Walker over g. Construct the walker before opening
// any output view so the snapshot covers only pre-existing views.
func NewWalker(g *graph.Graph) *Walker {
	snapshot := make([]*graph.View, len(g.Views))
	copy(snapshot, g.Views)
	return &Walker{g: g, snapshot: snapshot}
}

// TopLevelTextDocuments returns the text documents of the graph's top-level
// list, in insertion order.
func (w *Walker) TopLevelTextDocuments() []*graph.Document {
	var docs []*graph.Document
	for _, d := range w.g.Documents {
		if d.IsText() {
			docs = append(docs, d)
		}
	}
	return docs
}

// ViewsWithTextDocuments returns, for every snapshotted view that holds at
// least one text document, the view paired with those documents. Views
// without text documents are skipped entirely so no empty output view is
// created for them.
func (w *Walker) ViewsWithTextDocuments() []ViewDocuments {
	var result []ViewDocuments
	for _, v := range w.snapshot {
		docs := v.TextDocuments()
		if len(docs) == 0 {
			continue
		}
		result = append(result, ViewDocuments{View: v, Documents: docs})
	}
	return result
}
