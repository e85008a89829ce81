package annotator

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/c360studio/annograph/analysis/tokenizer"
	"github.com/c360studio/annograph/graph"
	"github.com/c360studio/annograph/pipeline"
	"github.com/c360studio/annograph/resolve"
)

const testGraph = `{
	"documents": [
		{"id": "d1", "type": "https://annograph.dev/vocabulary/document/TextDocument", "text": "Fido barks."}
	],
	"views": []
}`

// newTestComponent builds a component with a live runner but no NATS
// connection, enough to drive annotate and the HTTP handlers.
func newTestComponent(t *testing.T) *Component {
	t.Helper()

	runner, err := pipeline.NewRunner(pipeline.Config{
		Producer: "test-producer",
		Analyzer: tokenizer.New(),
		Resolver: resolve.New(resolve.Options{AllowInsecure: true}),
	})
	if err != nil {
		t.Fatalf("create runner: %v", err)
	}

	return &Component{
		name:    "annotator",
		config:  DefaultConfig(),
		logger:  slog.Default(),
		runner:  runner,
		running: true,
	}
}

func TestAnnotateProducesViews(t *testing.T) {
	c := newTestComponent(t)

	req := &AnnotateRequest{RequestID: "req-1", Graph: json.RawMessage(testGraph)}
	result := c.annotate(context.Background(), req)

	if result.Error != "" {
		t.Fatalf("unexpected error: %s", result.Error)
	}
	if result.RequestID != "req-1" {
		t.Errorf("expected request ID req-1, got %s", result.RequestID)
	}
	if len(result.Views) != 1 {
		t.Fatalf("expected 1 new view, got %d", len(result.Views))
	}
	if result.Annotations != 2 {
		t.Errorf("expected 2 annotations, got %d", result.Annotations)
	}

	// The returned graph contains the appended view
	g, err := graph.Parse(result.Graph)
	if err != nil {
		t.Fatalf("parse result graph: %v", err)
	}
	if len(g.Views) != 1 {
		t.Errorf("expected 1 view in result graph, got %d", len(g.Views))
	}
}

func TestAnnotateMalformedGraph(t *testing.T) {
	c := newTestComponent(t)

	req := &AnnotateRequest{RequestID: "req-2", Graph: json.RawMessage(`{not json`)}
	result := c.annotate(context.Background(), req)

	if result.Error == "" {
		t.Fatal("expected error for malformed graph")
	}
	if len(result.Graph) != 0 {
		t.Error("expected no graph output on error")
	}
}

func TestHandleAnnotate(t *testing.T) {
	c := newTestComponent(t)

	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("/api/annotator/", mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/annotator/annotate", bytes.NewReader([]byte(testGraph)))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result AnnotateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Annotations != 2 {
		t.Errorf("expected 2 annotations, got %d", result.Annotations)
	}
	if len(result.Views) != 1 {
		t.Errorf("expected 1 view, got %d", len(result.Views))
	}
}

func TestHandleAnnotateRejectsGet(t *testing.T) {
	c := newTestComponent(t)

	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("/api/annotator/", mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/annotator/annotate", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleGetMetadata(t *testing.T) {
	c := newTestComponent(t)

	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("/api/annotator/", mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/annotator/", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp MetadataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Producer != c.config.Producer {
		t.Errorf("expected producer %s, got %s", c.config.Producer, resp.Producer)
	}
	if resp.App.Identifier == "" {
		t.Error("expected app identifier in metadata")
	}
}

func TestPayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{ Validate() error }
		wantErr bool
	}{
		{
			name:    "valid request",
			payload: &AnnotateRequest{RequestID: "r1", Graph: json.RawMessage(`{}`)},
			wantErr: false,
		},
		{
			name:    "request missing ID",
			payload: &AnnotateRequest{Graph: json.RawMessage(`{}`)},
			wantErr: true,
		},
		{
			name:    "request missing graph",
			payload: &AnnotateRequest{RequestID: "r1"},
			wantErr: true,
		},
		{
			name:    "valid result with graph",
			payload: &AnnotateResult{RequestID: "r1", Graph: json.RawMessage(`{}`)},
			wantErr: false,
		},
		{
			name:    "valid result with error",
			payload: &AnnotateResult{RequestID: "r1", Error: "boom"},
			wantErr: false,
		},
		{
			name:    "result with neither graph nor error",
			payload: &AnnotateResult{RequestID: "r1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
