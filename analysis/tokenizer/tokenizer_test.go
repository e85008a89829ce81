package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/annograph/analysis"
	vocab "github.com/c360studio/annograph/vocabulary/annotation"
)

func TestTokenizer_Analyze(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []analysis.Span
	}{
		{
			name: "two words with punctuation",
			text: "Fido barks.",
			want: []analysis.Span{{Start: 0, End: 4}, {Start: 5, End: 10}},
		},
		{
			name: "sentence",
			text: "The door is open.",
			want: []analysis.Span{{Start: 0, End: 3}, {Start: 4, End: 8}, {Start: 9, End: 11}, {Start: 12, End: 16}},
		},
		{
			name: "empty text",
			text: "",
			want: []analysis.Span{},
		},
		{
			name: "punctuation only",
			text: "...!?",
			want: []analysis.Span{},
		},
	}

	tok := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Analyze(tt.text)
			require.Len(t, got, len(tt.want))
			for i, span := range tt.want {
				assert.Equal(t, span, got[i])
				assert.Equal(t, tt.text[span.Start:span.End], tt.text[got[i].Start:got[i].End])
			}
		})
	}
}

func TestTokenizer_Deterministic(t *testing.T) {
	tok := New()
	text := "Same input, same spans."
	assert.Equal(t, tok.Analyze(text), tok.Analyze(text))
}

func TestTokenizer_Produces(t *testing.T) {
	assert.Equal(t, vocab.Token, New().Produces())
}
