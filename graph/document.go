package graph

import (
	vocab "github.com/c360studio/annograph/vocabulary/document"
)

// Document is a source unit with an id, a type classifier IRI, and content
// available through exactly one of an inline text value or an external
// location reference. Documents are read-only for the duration of a run.
type Document struct {
	// ID is unique within the document's immediate container: the graph's
	// top-level list, or a single view.
	ID string `json:"id"`

	// Type is the document type classifier IRI.
	Type string `json:"type"`

	// Text is the inline text content. When set it wins over Location,
	// which is then never dereferenced.
	Text string `json:"text,omitempty"`

	// Location is an external content reference: an http(s) URL or a
	// filesystem path.
	Location string `json:"location,omitempty"`
}

// Kind classifies the document's type IRI.
func (d *Document) Kind() vocab.Kind {
	return vocab.KindOf(d.Type)
}

// IsText reports whether the document classifies as text-bearing.
func (d *Document) IsText() bool {
	return d.Kind() == vocab.KindText
}

// HasContent reports whether any content source is declared. A text
// document without either source is a data-integrity error surfaced as an
// unreadable-document diagnostic, never silently skipped.
func (d *Document) HasContent() bool {
	return d.Text != "" || d.Location != ""
}
