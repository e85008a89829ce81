package pipeline

import (
	"fmt"
	"strconv"
)

// Allocator generates unique, monotonically numbered identifiers within the
// scope of one processing run. Annotation counters are per prefix, so "t1"
// and "s1" can coexist; the view counter is independent of both.
//
// Not safe for concurrent use: one run's graph is processed by a single
// worker, and concurrent runs over independent graphs must each use their
// own Allocator.
type Allocator struct {
	counters map[string]int
	views    int
	issued   map[string]struct{}
}

// NewAllocator creates an Allocator ready for a run.
func NewAllocator() *Allocator {
	a := &Allocator{}
	a.Reset()
	return a
}

// Reset clears all counters. Call exactly once at the start of a run,
// before any annotation or view identifier is created, and not again until
// the next independent run. After a reset an identical run on an identical
// graph reproduces the identical id sequence.
func (a *Allocator) Reset() {
	a.counters = make(map[string]int)
	a.views = 0
	a.issued = make(map[string]struct{})
}

// Next returns the prefix concatenated with the next counter value for that
// prefix. Identifiers stay distinct for the remainder of the run; a
// collision is an internal defect and panics rather than being masked.
func (a *Allocator) Next(prefix string) string {
	a.counters[prefix]++
	id := prefix + strconv.Itoa(a.counters[prefix])
	if _, dup := a.issued[id]; dup {
		panic(fmt.Sprintf("duplicate identifier %q issued within one run", id))
	}
	a.issued[id] = struct{}{}
	return id
}

// NextView returns the next value of the run-scoped view counter,
// independent of the annotation counters.
func (a *Allocator) NextView() int {
	a.views++
	return a.views
}
