// Package storage provides the persistence interfaces for the QualGraph
// knowledge graph.
//
// The graph is persisted as a single aggregate: every mutating operation
// loads the whole graph, mutates an in-memory copy, and saves it back.
// Load and Save are the only I/O boundary; implementations can be
// file-backed, database-backed, or in-memory without the engine caring.
package storage

import (
	"context"

	"github.com/qualgraph/qualgraph/pkg/types"
)

// GraphStore owns load/save of the entire knowledge graph as one atomic unit.
type GraphStore interface {
	// Load returns the persisted graph, or an empty graph when no prior
	// state exists. A missing store file is the empty-graph case, not an
	// error.
	Load(ctx context.Context) (*types.KnowledgeGraph, error)

	// Save persists the entire graph, replacing prior state atomically
	// from the caller's point of view. No partial writes are observable.
	Save(ctx context.Context, graph *types.KnowledgeGraph) error

	// Close releases any resources held by the store.
	Close() error
}

// StageRecord is one entry in a session's stage journal. The graph engine
// treats the payload as opaque; it belongs to the session-orchestration
// layer.
type StageRecord struct {
	Stage      string         `json:"stage"`
	RecordedAt string         `json:"recordedAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// SessionStore persists per-session stage journals, keyed by opaque session
// ID. It is deliberately independent of the GraphStore: the two files in
// the data directory evolve separately.
type SessionStore interface {
	// LoadSession returns the ordered stage records for a session. A
	// session that has never been written resolves to an empty journal.
	LoadSession(ctx context.Context, sessionID string) ([]StageRecord, error)

	// AppendStage appends one record to a session's journal.
	AppendStage(ctx context.Context, sessionID string, record StageRecord) error

	// ListSessions returns all known session IDs.
	ListSessions(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
