package graph

// Annotation is a typed, id-bearing record of one analysis result, owned by
// exactly one view. The span fields are fixed; Properties is an open
// extension map for additional annotation kinds.
type Annotation struct {
	// ID is unique across the whole graph for one processing run.
	ID string `json:"id"`

	// Type is the annotation type IRI.
	Type string `json:"type"`

	// Start and End are offsets into the source text such that
	// text[start:end] yields Text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Text is the literal substring covered by the span.
	Text string `json:"text"`

	// Document is the qualified anchor: "<viewId>:<docId>" for documents
	// nested in a view, omitted for single-document top-level views where
	// the view's contain declaration names the document.
	Document string `json:"document,omitempty"`

	// Properties carries additional fields for other annotation kinds.
	Properties map[string]any `json:"properties,omitempty"`
}
