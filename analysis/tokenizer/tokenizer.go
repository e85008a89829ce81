// Package tokenizer provides the reference analyzer: a simplistic
// regular-expression tokenizer emitting word spans.
package tokenizer

import (
	"regexp"

	"github.com/c360studio/annograph/analysis"
	vocab "github.com/c360studio/annograph/vocabulary/annotation"
)

// Version is the tool version surfaced in service metadata.
const Version = "0.1.0"

var wordRe = regexp.MustCompile(`\w+`)

// Tokenizer emits one Token span per \w+ match, in match order. Offsets are
// byte offsets, consistent with text[start:end] slicing.
type Tokenizer struct{}

// New creates a Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Analyze implements analysis.Analyzer.
func (t *Tokenizer) Analyze(text string) []analysis.Span {
	matches := wordRe.FindAllStringIndex(text, -1)
	spans := make([]analysis.Span, len(matches))
	for i, m := range matches {
		spans[i] = analysis.Span{Start: m[0], End: m[1]}
	}
	return spans
}

// Produces implements analysis.Analyzer.
func (t *Tokenizer) Produces() string {
	return vocab.Token
}
