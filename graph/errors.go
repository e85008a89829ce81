package graph

import "errors"

// Common graph errors.
var (
	// ErrMalformedGraph is returned for structurally invalid input. It is
	// fatal: a run aborts before any view is created.
	ErrMalformedGraph = errors.New("malformed graph")
)
