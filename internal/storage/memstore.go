package storage

import (
	"context"
	"sync"

	"github.com/qualgraph/qualgraph/pkg/types"
)

// MemStore is an in-memory GraphStore used in tests and as a scratch
// backend. It deep-copies on both Load and Save so callers can never
// mutate the stored graph without going through Save.
type MemStore struct {
	mu    sync.Mutex
	graph *types.KnowledgeGraph

	// FailLoad and FailSave, when set, are returned verbatim by the next
	// Load/Save call. Used to exercise storage failure paths.
	FailLoad error
	FailSave error

	// SaveCount tracks how many times Save has been called.
	SaveCount int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{graph: types.NewKnowledgeGraph()}
}

// Load returns a deep copy of the stored graph.
func (s *MemStore) Load(ctx context.Context) (*types.KnowledgeGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoad != nil {
		return nil, s.FailLoad
	}
	return copyGraph(s.graph), nil
}

// Save replaces the stored graph with a deep copy of the argument.
func (s *MemStore) Save(ctx context.Context, graph *types.KnowledgeGraph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.graph = copyGraph(graph)
	s.SaveCount++
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

func copyGraph(g *types.KnowledgeGraph) *types.KnowledgeGraph {
	out := &types.KnowledgeGraph{
		Entities:  make([]types.Entity, len(g.Entities)),
		Relations: make([]types.Relation, len(g.Relations)),
	}
	for i, e := range g.Entities {
		obs := make([]string, len(e.Observations))
		copy(obs, e.Observations)
		out.Entities[i] = types.Entity{Name: e.Name, EntityType: e.EntityType, Observations: obs}
	}
	copy(out.Relations, g.Relations)
	return out
}
