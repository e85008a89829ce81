// Package graph defines the document-annotation graph model.
//
// A Graph is the root container for one processing run: an ordered list of
// primary documents plus an ordered list of views produced by earlier
// processing stages. Views are append-only; a run never mutates documents or
// views it did not create, except to append new views to the graph.
package graph
