// Package engine implements the knowledge-graph engine: mutation
// operations, the status/priority subsystem, substring search, and the
// analytical views over qualitative-research data.
//
// Every operation performs one full load-mutate-save cycle against the
// injected GraphStore. There is no in-memory caching between calls and no
// locking; overlapping operations against the same store are last-save-wins.
package engine

import (
	"context"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// Engine executes graph operations against a GraphStore.
type Engine struct {
	store storage.GraphStore
}

// NewEngine creates an engine backed by the given store.
func NewEngine(store storage.GraphStore) *Engine {
	return &Engine{store: store}
}

// ReadGraph returns the entire persisted graph.
func (e *Engine) ReadGraph(ctx context.Context) (*types.KnowledgeGraph, error) {
	return e.store.Load(ctx)
}
