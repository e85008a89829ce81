package annotator

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/annograph/app"
	"github.com/c360studio/annograph/storage"
)

// maxRequestBody caps the size of HTTP annotation requests.
const maxRequestBody = 32 << 20

// RegisterHTTPHandlers registers HTTP handlers for the annotator component.
// The prefix should include the trailing slash (e.g., "/api/annotator/").
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(prefix, c.handleGetMetadata)
	mux.HandleFunc(prefix+"annotate", c.handleAnnotate)
	mux.HandleFunc(prefix+"graphs", c.handleListGraphs)
	mux.HandleFunc(prefix+"graphs/", c.handleGraph)
	mux.HandleFunc(prefix+"runs/", c.handleGetRun)
	mux.Handle(prefix+"metrics", promhttp.Handler())
}

// MetadataResponse is the JSON response for GET /
type MetadataResponse struct {
	App      app.Metadata `json:"app"`
	Producer string       `json:"producer"`
	Status   string       `json:"status"`
}

// handleGetMetadata handles GET / - returns the app metadata
func (c *Component) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()

	resp := MetadataResponse{
		App:      app.Default(),
		Producer: c.config.Producer,
		Status:   c.getStatusString(running),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.logger.Warn("Failed to encode metadata response", "error", err)
	}
}

// handleAnnotate handles POST /annotate - runs the pipeline synchronously
// over a serialized graph in the request body.
func (c *Component) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.mu.RLock()
	runner := c.runner
	c.mu.RUnlock()
	if runner == nil {
		http.Error(w, "Component not started", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	req := &AnnotateRequest{
		RequestID: uuid.New().String(),
		Graph:     body,
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := c.annotate(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if result.Error != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		c.logger.Warn("Failed to encode annotation response", "error", err)
	}
}

// getStore safely retrieves the run store, which is set during Start.
func (c *Component) getStore() *storage.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// handleListGraphs handles GET /graphs - lists all stored graphs.
func (c *Component) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := c.getStore()
	if store == nil {
		http.Error(w, "Run persistence disabled", http.StatusServiceUnavailable)
		return
	}

	graphs, err := store.ListGraphs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, c.logger, graphs)
}

// handleGraph handles GET/DELETE /graphs/{id} and GET /graphs/{id}/runs.
func (c *Component) handleGraph(w http.ResponseWriter, r *http.Request) {
	store := c.getStore()
	if store == nil {
		http.Error(w, "Run persistence disabled", http.StatusServiceUnavailable)
		return
	}

	id, endpoint := extractIDAndEndpoint(r.URL.Path, "/graphs/")
	if id == "" {
		http.Error(w, "Graph ID required", http.StatusBadRequest)
		return
	}

	switch {
	case endpoint == "runs" && r.Method == http.MethodGet:
		runs, err := store.ListRunsByGraph(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, c.logger, runs)

	case endpoint == "" && r.Method == http.MethodGet:
		record, err := store.GetGraph(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, c.logger, record)

	case endpoint == "" && r.Method == http.MethodDelete:
		if err := store.DeleteGraph(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRun handles GET /runs/{id} - returns a single run record.
func (c *Component) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := c.getStore()
	if store == nil {
		http.Error(w, "Run persistence disabled", http.StatusServiceUnavailable)
		return
	}

	id, _ := extractIDAndEndpoint(r.URL.Path, "/runs/")
	if id == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}

	record, err := store.GetRun(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, c.logger, record)
}

// extractIDAndEndpoint splits a path of the form .../{segment}{id}/{endpoint}
// into its id and trailing endpoint.
func extractIDAndEndpoint(path, segment string) (id, endpoint string) {
	idx := strings.Index(path, segment)
	if idx == -1 {
		return "", ""
	}

	remainder := path[idx+len(segment):]
	parts := strings.SplitN(remainder, "/", 2)
	if len(parts) == 0 {
		return "", ""
	}

	id = parts[0]
	if len(parts) > 1 {
		endpoint = strings.TrimSuffix(parts[1], "/")
	}

	return id, endpoint
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
