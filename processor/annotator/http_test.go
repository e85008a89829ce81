package annotator

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGraphEndpointsWithoutStore(t *testing.T) {
	c := newTestComponent(t)

	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("/api/annotator/", mux)

	// Run persistence is disabled, so the storage endpoints refuse
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/annotator/graphs"},
		{http.MethodGet, "/api/annotator/graphs/g1"},
		{http.MethodDelete, "/api/annotator/graphs/g1"},
		{http.MethodGet, "/api/annotator/graphs/g1/runs"},
		{http.MethodGet, "/api/annotator/runs/r1"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected 503, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestHandleListGraphsRejectsPost(t *testing.T) {
	c := newTestComponent(t)

	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("/api/annotator/", mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/annotator/graphs", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestExtractIDAndEndpoint(t *testing.T) {
	tests := []struct {
		path         string
		segment      string
		wantID       string
		wantEndpoint string
	}{
		{"/api/annotator/graphs/g1", "/graphs/", "g1", ""},
		{"/api/annotator/graphs/g1/runs", "/graphs/", "g1", "runs"},
		{"/api/annotator/graphs/g1/runs/", "/graphs/", "g1", "runs"},
		{"/api/annotator/graphs/", "/graphs/", "", ""},
		{"/api/annotator/runs/r1", "/runs/", "r1", ""},
		{"/api/annotator/other", "/graphs/", "", ""},
	}

	for _, tt := range tests {
		id, endpoint := extractIDAndEndpoint(tt.path, tt.segment)
		if id != tt.wantID || endpoint != tt.wantEndpoint {
			t.Errorf("extractIDAndEndpoint(%q, %q) = (%q, %q), want (%q, %q)",
				tt.path, tt.segment, id, endpoint, tt.wantID, tt.wantEndpoint)
		}
	}
}
