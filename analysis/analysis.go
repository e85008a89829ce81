// Package analysis defines the text-analysis contract the pipeline runs
// over discovered documents.
package analysis

// Span is one analysis result: a half-open [Start, End) offset pair over
// the analyzed text, such that text[Start:End] is the covered substring.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Analyzer produces a finite, ordered sequence of spans over a text.
// Implementations must be pure: no side effects, and identical input must
// yield identical output, or runs stop being reproducible.
type Analyzer interface {
	Analyze(text string) []Span

	// Produces returns the annotation type IRI of the produced spans.
	Produces() string
}
