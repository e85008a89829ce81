package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/annograph/analysis/tokenizer"
	"github.com/c360studio/annograph/graph"
	"github.com/c360studio/annograph/resolve"
	annovocab "github.com/c360studio/annograph/vocabulary/annotation"
	docvocab "github.com/c360studio/annograph/vocabulary/document"
)

const testProducer = "https://apps.annograph.dev/tokenizer"

func newTokenRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(Config{
		Producer: testProducer,
		Analyzer: tokenizer.New(),
		Resolver: resolve.New(resolve.Options{AllowInsecure: true}),
	})
	require.NoError(t, err)
	return r
}

func TestNewRunner_ConfigValidation(t *testing.T) {
	_, err := NewRunner(Config{Analyzer: tokenizer.New()})
	assert.Error(t, err, "missing producer")

	_, err = NewRunner(Config{Producer: testProducer})
	assert.Error(t, err, "missing analyzer")
}

func TestRunner_TopLevelDocument(t *testing.T) {
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	require.Len(t, g.Views, 1)

	v := g.Views[0]
	assert.Equal(t, testProducer, v.Metadata.App)
	require.Len(t, v.Metadata.Contains, 1)
	assert.Equal(t, annovocab.Token, v.Metadata.Contains[0].Type)
	assert.Equal(t, "d1", v.Metadata.Contains[0].Document,
		"single top-level document view declares the document id")

	require.Len(t, v.Annotations, 2)
	assert.Equal(t, 2, result.Annotations)

	first, second := v.Annotations[0], v.Annotations[1]
	assert.Equal(t, 0, first.Start)
	assert.Equal(t, 4, first.End)
	assert.Equal(t, "Fido", first.Text)
	assert.Equal(t, 5, second.Start)
	assert.Equal(t, 10, second.End)
	assert.Equal(t, "barks", second.Text)

	assert.Empty(t, first.Document, "top-level anchors stay on the contain declaration")
	assert.Empty(t, second.Document)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRunner_NestedDocuments(t *testing.T) {
	g := &graph.Graph{
		Views: []*graph.View{
			{
				ID:       "v1",
				Metadata: graph.ViewMetadata{App: "https://apps.annograph.dev/segmenter"},
				Documents: []*graph.Document{
					{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
					{ID: "d2", Type: docvocab.TextDocument, Text: "The door is open."},
				},
			},
		},
	}

	_, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, g.Views, 2)

	v := g.Views[1]
	require.Len(t, v.Metadata.Contains, 1)
	assert.Empty(t, v.Metadata.Contains[0].Document,
		"mixed-document views declare no single document")

	// d1's two tokens precede d2's four; every annotation carries an
	// explicit qualified anchor.
	require.Len(t, v.Annotations, 6)
	for i, a := range v.Annotations {
		if i < 2 {
			assert.Equal(t, "v1:d1", a.Document)
		} else {
			assert.Equal(t, "v1:d2", a.Document)
		}
	}
}

func TestRunner_BothPasses(t *testing.T) {
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
		},
		Views: []*graph.View{
			{ID: "v1", Documents: []*graph.Document{
				{ID: "d1", Type: docvocab.TextDocument, Text: "The door is open."},
			}},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)

	// One view for the top-level document, one for v1's nested document.
	require.Len(t, g.Views, 3)
	require.Len(t, result.NewViews, 2)
	assert.Equal(t, 6, result.Annotations)

	topView := g.ViewByID(result.NewViews[0])
	nestedView := g.ViewByID(result.NewViews[1])
	require.NotNil(t, topView)
	require.NotNil(t, nestedView)

	for _, a := range topView.Annotations {
		assert.Empty(t, a.Document)
	}
	for _, a := range nestedView.Annotations {
		assert.Equal(t, "v1:d1", a.Document)
	}
}

func TestRunner_PreexistingViewsUnchanged(t *testing.T) {
	existing := &graph.View{
		ID:       "v1",
		Metadata: graph.ViewMetadata{App: "https://apps.annograph.dev/segmenter"},
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
		},
		Annotations: []*graph.Annotation{
			{ID: "s1", Type: annovocab.Sentence, Start: 0, End: 11, Text: "Fido barks."},
		},
	}
	g := &graph.Graph{Views: []*graph.View{existing}}

	before := &graph.Graph{Views: []*graph.View{existing}}
	beforeBytes, err := before.Serialize()
	require.NoError(t, err)

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)

	afterBytes, err := (&graph.Graph{Views: []*graph.View{g.Views[0]}}).Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(beforeBytes), string(afterBytes),
		"pre-existing views stay byte-identical")

	for _, id := range result.NewViews {
		assert.NotEqual(t, "v1", id)
	}
}

func TestRunner_MalformedGraphAbortsBeforeOutput(t *testing.T) {
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "one"},
			{ID: "d1", Type: docvocab.TextDocument, Text: "two"},
		},
	}

	_, err := newTokenRunner(t).Run(context.Background(), g)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrMalformedGraph)
	assert.Empty(t, g.Views, "no partial output on malformed input")
}

func TestRunner_UnreadableDocumentIsPartialFailure(t *testing.T) {
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
			{ID: "d2", Type: docvocab.TextDocument}, // no text, no location
			{ID: "d3", Type: docvocab.TextDocument, Text: "The door is open."},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err, "unreadable documents do not abort the run")

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "d2", result.Diagnostics[0].AnchorID)

	// d1 and d3 were still processed.
	assert.Equal(t, 6, result.Annotations)
	require.Len(t, g.Views, 3)
	assert.Empty(t, g.Views[1].Annotations, "the unreadable document's view stays empty")
}

func TestRunner_UnresolvableLocation(t *testing.T) {
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Location: "/nonexistent/doc.txt"},
			{ID: "d2", Type: docvocab.TextDocument, Text: "Fido barks."},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "d1", result.Diagnostics[0].AnchorID)
	assert.Equal(t, 2, result.Annotations)
}

func TestRunner_FileLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Fido barks."), 0644))

	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Location: path},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 2, result.Annotations)
}

func TestRunner_InlineTextWinsOverLocation(t *testing.T) {
	// The location is intentionally unresolvable: it must never be
	// dereferenced when inline text is present.
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks.", Location: "/nonexistent/doc.txt"},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 2, result.Annotations)
	assert.Equal(t, "Fido", g.Views[0].Annotations[0].Text)
}

func TestRunner_NonTextDocumentsIgnored(t *testing.T) {
	g := &graph.Graph{
		Documents: []*graph.Document{
			{ID: "m1", Type: docvocab.VideoDocument, Location: "/media/m1.mp4"},
		},
	}

	result, err := newTokenRunner(t).Run(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, g.Views)
	assert.Empty(t, result.NewViews)
}

func collectAnnotationIDs(g *graph.Graph) []string {
	var ids []string
	for _, v := range g.Views {
		for _, a := range v.Annotations {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestRunner_DeterministicIDs(t *testing.T) {
	build := func() *graph.Graph {
		return &graph.Graph{
			Documents: []*graph.Document{
				{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
			},
			Views: []*graph.View{
				{ID: "v1", Documents: []*graph.Document{
					{ID: "d1", Type: docvocab.TextDocument, Text: "The door is open."},
				}},
			},
		}
	}

	g1, g2 := build(), build()

	_, err := newTokenRunner(t).Run(context.Background(), g1)
	require.NoError(t, err)
	_, err = newTokenRunner(t).Run(context.Background(), g2)
	require.NoError(t, err)

	assert.Equal(t, collectAnnotationIDs(g1), collectAnnotationIDs(g2),
		"identical runs on identical graphs reproduce identical ids")
}

func TestRunner_ReusedRunnerResetsPerRun(t *testing.T) {
	r := newTokenRunner(t)
	build := func() *graph.Graph {
		return &graph.Graph{Documents: []*graph.Document{
			{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
		}}
	}

	g1, g2 := build(), build()
	_, err := r.Run(context.Background(), g1)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), g2)
	require.NoError(t, err)

	assert.Equal(t, collectAnnotationIDs(g1), collectAnnotationIDs(g2))
}

func TestRunner_IndependentGraphsDoNotOverlap(t *testing.T) {
	gA := &graph.Graph{Documents: []*graph.Document{
		{ID: "d1", Type: docvocab.TextDocument, Text: "Fido barks."},
	}}
	gB := &graph.Graph{Documents: []*graph.Document{
		{ID: "d1", Type: docvocab.TextDocument, Text: "The door is open."},
	}}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = newTokenRunner(t).Run(context.Background(), gA)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = newTokenRunner(t).Run(context.Background(), gB)
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	idsA := collectAnnotationIDs(gA)
	idsB := collectAnnotationIDs(gB)
	require.NotEmpty(t, idsA)
	require.NotEmpty(t, idsB)

	seen := make(map[string]struct{}, len(idsA))
	for _, id := range idsA {
		seen[id] = struct{}{}
	}
	for _, id := range idsB {
		_, overlap := seen[id]
		assert.False(t, overlap, "id %s produced by both runs", id)
	}
}
