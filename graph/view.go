package graph

// ContainDecl declares an annotation type a view contains. When the view was
// created for exactly one top-level document, Document names that document's
// id and per-annotation anchors are omitted.
type ContainDecl struct {
	Type     string `json:"type"`
	Document string `json:"document,omitempty"`
}

// ViewMetadata carries the provenance of a view: the producer identity and
// the annotation types the view declares.
type ViewMetadata struct {
	// App is the opaque identifier of the component that created the view.
	App string `json:"app"`

	// Contains lists the declared annotation types.
	Contains []ContainDecl `json:"contains,omitempty"`
}

// View is a named, append-only collection of annotations produced by one
// processing stage. A view may also hold documents placed there by an
// earlier stage; those are inputs for later runs.
type View struct {
	ID          string        `json:"id"`
	Metadata    ViewMetadata  `json:"metadata"`
	Documents   []*Document   `json:"documents,omitempty"`
	Annotations []*Annotation `json:"annotations"`
}

// NewContain records a declared annotation type. documentID may be empty
// when the view will hold annotations anchored to multiple documents.
func (v *View) NewContain(annotationType, documentID string) {
	v.Metadata.Contains = append(v.Metadata.Contains, ContainDecl{
		Type:     annotationType,
		Document: documentID,
	})
}

// NewAnnotation creates an annotation of the given type, appends it to the
// view, and returns it for property assignment. Annotations belong to
// exactly one view.
func (v *View) NewAnnotation(id, annotationType string) *Annotation {
	a := &Annotation{ID: id, Type: annotationType}
	v.Annotations = append(v.Annotations, a)
	return a
}

// TextDocuments returns the text-bearing documents the view holds, in the
// view's own document order.
func (v *View) TextDocuments() []*Document {
	var docs []*Document
	for _, d := range v.Documents {
		if d.IsText() {
			docs = append(docs, d)
		}
	}
	return docs
}
