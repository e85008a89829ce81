package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Graph is the root container of documents and views for one processing run.
// Document and view order is significant: output is deterministic only if
// insertion order is preserved.
type Graph struct {
	Documents []*Document `json:"documents"`
	Views     []*View     `json:"views"`
}

// Parse deserializes a graph from its JSON representation and validates it.
// A structurally invalid graph is rejected before any processing starts.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGraph, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Serialize marshals the graph to indented JSON.
func (g *Graph) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize graph: %w", err)
	}
	return data, nil
}

// Validate checks structural integrity: non-empty ids free of the anchor
// separator, document ids unique within their container, and view ids
// unique within the graph. Violations are malformed input and abort a run
// before any view is created.
func (g *Graph) Validate() error {
	docIDs := make(map[string]struct{}, len(g.Documents))
	for _, doc := range g.Documents {
		if err := validateID(doc, "document"); err != nil {
			return err
		}
		if _, dup := docIDs[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q", ErrMalformedGraph, doc.ID)
		}
		docIDs[doc.ID] = struct{}{}
	}

	viewIDs := make(map[string]struct{}, len(g.Views))
	for _, v := range g.Views {
		if v == nil || v.ID == "" {
			return fmt.Errorf("%w: view with empty id", ErrMalformedGraph)
		}
		if strings.Contains(v.ID, anchorSep) {
			return fmt.Errorf("%w: view id %q contains reserved separator %q", ErrMalformedGraph, v.ID, anchorSep)
		}
		if _, dup := viewIDs[v.ID]; dup {
			return fmt.Errorf("%w: duplicate view id %q", ErrMalformedGraph, v.ID)
		}
		viewIDs[v.ID] = struct{}{}

		nested := make(map[string]struct{}, len(v.Documents))
		for _, doc := range v.Documents {
			if err := validateID(doc, "view "+v.ID+" document"); err != nil {
				return err
			}
			if _, dup := nested[doc.ID]; dup {
				return fmt.Errorf("%w: view %q holds duplicate document id %q", ErrMalformedGraph, v.ID, doc.ID)
			}
			nested[doc.ID] = struct{}{}
		}
	}
	return nil
}

// validateID rejects empty ids and ids carrying the anchor separator. A
// bare document id containing ":" would be indistinguishable from a
// qualified anchor, so the separator is reserved.
func validateID(doc *Document, where string) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: %s with empty id", ErrMalformedGraph, where)
	}
	if strings.Contains(doc.ID, anchorSep) {
		return fmt.Errorf("%w: %s id %q contains reserved separator %q", ErrMalformedGraph, where, doc.ID, anchorSep)
	}
	return nil
}

// AppendView appends a view to the graph's view sequence.
func (g *Graph) AppendView(v *View) {
	g.Views = append(g.Views, v)
}

// HasViewID reports whether a view with the given id already exists.
func (g *Graph) HasViewID(id string) bool {
	for _, v := range g.Views {
		if v.ID == id {
			return true
		}
	}
	return false
}

// ViewByID returns the view with the given id, or nil.
func (g *Graph) ViewByID(id string) *View {
	for _, v := range g.Views {
		if v.ID == id {
			return v
		}
	}
	return nil
}
