// Package storage provides graph and run persistence for annograph using NATS KV.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/annograph/pipeline"
)

// Bucket names for each record type.
const (
	BucketGraphs = "ANNOGRAPH_GRAPHS"
	BucketRuns   = "ANNOGRAPH_RUNS"
)

// StoredGraph wraps a serialized graph with storage metadata.
type StoredGraph struct {
	ID        string          `json:"id"`
	Graph     json.RawMessage `json:"graph"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunRecord captures the outcome of one annotation run over a stored graph.
type RunRecord struct {
	ID          string                `json:"id"`
	GraphID     string                `json:"graph_id"`
	Producer    string                `json:"producer"`
	Views       []string              `json:"views,omitempty"`
	Annotations int                   `json:"annotations"`
	Diagnostics []pipeline.Diagnostic `json:"diagnostics,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewRunID generates a unique run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Store provides graph and run storage operations backed by NATS KV.
type Store struct {
	graphs jetstream.KeyValue
	runs   jetstream.KeyValue
}

// NewStore creates a new Store with the given JetStream context.
// It creates the necessary KV buckets if they don't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	graphs, err := getOrCreateBucket(ctx, js, BucketGraphs)
	if err != nil {
		return nil, fmt.Errorf("create graphs bucket: %w", err)
	}

	runs, err := getOrCreateBucket(ctx, js, BucketRuns)
	if err != nil {
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}

	return &Store{
		graphs: graphs,
		runs:   runs,
	}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Annograph %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// PutGraph stores a serialized graph under the given ID, creating or
// replacing it. Returns the stored record.
func (s *Store) PutGraph(ctx context.Context, id string, graph json.RawMessage) (*StoredGraph, error) {
	if id == "" {
		return nil, fmt.Errorf("graph ID is required")
	}

	now := time.Now()
	record := &StoredGraph{
		ID:        id,
		Graph:     graph,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Preserve the original creation time on replace
	if existing, err := s.GetGraph(ctx, id); err == nil {
		record.CreatedAt = existing.CreatedAt
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}

	if _, err := s.graphs.Put(ctx, id, data); err != nil {
		return nil, fmt.Errorf("store graph: %w", err)
	}

	return record, nil
}

// GetGraph retrieves a stored graph by ID.
func (s *Store) GetGraph(ctx context.Context, id string) (*StoredGraph, error) {
	entry, err := s.graphs.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get graph: %w", err)
	}

	var record StoredGraph
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}

	return &record, nil
}

// ListGraphs returns all stored graphs.
func (s *Store) ListGraphs(ctx context.Context) ([]*StoredGraph, error) {
	keys, err := s.graphs.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list graph keys: %w", err)
	}

	records := make([]*StoredGraph, 0, len(keys))
	for _, key := range keys {
		entry, err := s.graphs.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var record StoredGraph
		if err := json.Unmarshal(entry.Value(), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

// DeleteGraph removes a stored graph.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	if err := s.graphs.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete graph: %w", err)
	}
	return nil
}

// CreateRun stores a run record and returns its generated ID.
func (s *Store) CreateRun(ctx context.Context, record *RunRecord) (string, error) {
	record.ID = NewRunID()
	record.CreatedAt = time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal run: %w", err)
	}

	if _, err := s.runs.Create(ctx, record.ID, data); err != nil {
		return "", fmt.Errorf("store run: %w", err)
	}

	return record.ID, nil
}

// GetRun retrieves a run record by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	entry, err := s.runs.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}

	return &record, nil
}

// ListRunsByGraph returns all run records for a given graph.
func (s *Store) ListRunsByGraph(ctx context.Context, graphID string) ([]*RunRecord, error) {
	keys, err := s.runs.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list run keys: %w", err)
	}

	records := make([]*RunRecord, 0)
	for _, key := range keys {
		entry, err := s.runs.Get(ctx, key)
		if err != nil {
			continue
		}
		var record RunRecord
		if err := json.Unmarshal(entry.Value(), &record); err != nil {
			continue
		}
		if record.GraphID == graphID {
			records = append(records, &record)
		}
	}

	return records, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
