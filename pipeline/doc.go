// Package pipeline implements the document-discovery and view-construction
// protocol over annotation graphs.
//
// One Runner processes one graph start to finish: it discovers text-bearing
// documents in the top-level list and inside pre-existing views, opens a new
// provenance-tagged view per source, runs the configured analyzer, and
// anchors every produced annotation back to its source document with a
// qualified identifier. Existing documents and views are never mutated.
//
// A Runner is single-threaded by contract. Concurrent processing of
// independent graphs requires independent Runner instances; sharing a graph
// between two in-flight runs is not safe.
package pipeline
