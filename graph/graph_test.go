package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vocab "github.com/c360studio/annograph/vocabulary/document"
)

func TestParse_RoundTrip(t *testing.T) {
	input := []byte(`{
  "documents": [
    {"id": "d1", "type": "` + vocab.TextDocument + `", "text": "Fido barks."}
  ],
  "views": [
    {
      "id": "v1",
      "metadata": {"app": "https://apps.annograph.dev/segmenter"},
      "documents": [
        {"id": "d1", "type": "` + vocab.TextDocument + `", "text": "The door is open."}
      ],
      "annotations": []
    }
  ]
}`)

	g, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, g.Documents, 1)
	require.Len(t, g.Views, 1)

	assert.Equal(t, "d1", g.Documents[0].ID)
	assert.True(t, g.Documents[0].IsText())
	assert.Equal(t, "https://apps.annograph.dev/segmenter", g.Views[0].Metadata.App)
	require.Len(t, g.Views[0].Documents, 1)

	out, err := g.Serialize()
	require.NoError(t, err)

	g2, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, g, g2)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"documents": [`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedGraph)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		graph   *Graph
		wantErr bool
	}{
		{
			name:  "empty graph is valid",
			graph: &Graph{},
		},
		{
			name: "duplicate top-level document ids",
			graph: &Graph{Documents: []*Document{
				{ID: "d1", Type: vocab.TextDocument},
				{ID: "d1", Type: vocab.TextDocument},
			}},
			wantErr: true,
		},
		{
			name: "duplicate view ids",
			graph: &Graph{Views: []*View{
				{ID: "v1"},
				{ID: "v1"},
			}},
			wantErr: true,
		},
		{
			name: "empty document id",
			graph: &Graph{Documents: []*Document{
				{ID: "", Type: vocab.TextDocument},
			}},
			wantErr: true,
		},
		{
			name: "duplicate document ids inside one view",
			graph: &Graph{Views: []*View{
				{ID: "v1", Documents: []*Document{
					{ID: "d1", Type: vocab.TextDocument},
					{ID: "d1", Type: vocab.TextDocument},
				}},
			}},
			wantErr: true,
		},
		{
			name: "document id with reserved separator",
			graph: &Graph{Documents: []*Document{
				{ID: "v1:d1", Type: vocab.TextDocument},
			}},
			wantErr: true,
		},
		{
			name: "same document id in different containers is fine",
			graph: &Graph{
				Documents: []*Document{{ID: "d1", Type: vocab.TextDocument}},
				Views: []*View{
					{ID: "v1", Documents: []*Document{{ID: "d1", Type: vocab.TextDocument}}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedGraph)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestView_TextDocuments_PreservesOrder(t *testing.T) {
	v := &View{
		ID: "v1",
		Documents: []*Document{
			{ID: "d1", Type: vocab.TextDocument, Text: "one"},
			{ID: "m1", Type: vocab.VideoDocument, Location: "/media/m1.mp4"},
			{ID: "d2", Type: vocab.TextDocument, Text: "two"},
		},
	}

	docs := v.TextDocuments()
	require.Len(t, docs, 2)
	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, "d2", docs[1].ID)
}

func TestView_NewAnnotation_AppendsInOrder(t *testing.T) {
	v := &View{ID: "v1"}
	v.NewAnnotation("t1", "type-a")
	v.NewAnnotation("t2", "type-a")

	require.Len(t, v.Annotations, 2)
	assert.Equal(t, "t1", v.Annotations[0].ID)
	assert.Equal(t, "t2", v.Annotations[1].ID)
}
