// Package jsonfile implements file-backed stores for the knowledge graph
// and the session-stage journal. Each store owns a single JSON file that
// is read and rewritten wholesale on every operation.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// GraphStore persists the knowledge graph as a pretty-printed JSON object
// {"entities": [...], "relations": [...]} at a fixed path. Saves write to a
// temp file in the same directory and rename over the target so readers
// never observe a partial write.
type GraphStore struct {
	path string
}

// NewGraphStore creates a store backed by the given file path. The parent
// directory is created if needed; the file itself is created lazily on the
// first Save.
func NewGraphStore(path string) (*GraphStore, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonfile: graph store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, storage.Storagef("jsonfile: create data directory %q: %v", filepath.Dir(path), err)
	}
	return &GraphStore{path: path}, nil
}

// Load reads the whole graph file. A missing file resolves to an empty
// graph, not an error.
func (s *GraphStore) Load(ctx context.Context) (*types.KnowledgeGraph, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewKnowledgeGraph(), nil
		}
		return nil, storage.Storagef("jsonfile: read %q: %v", s.path, err)
	}

	graph := types.NewKnowledgeGraph()
	if err := json.Unmarshal(data, graph); err != nil {
		return nil, storage.Storagef("jsonfile: parse %q: %v", s.path, err)
	}
	if graph.Entities == nil {
		graph.Entities = []types.Entity{}
	}
	if graph.Relations == nil {
		graph.Relations = []types.Relation{}
	}
	return graph, nil
}

// Save overwrites the whole graph file atomically (temp file + rename).
func (s *GraphStore) Save(ctx context.Context, graph *types.KnowledgeGraph) error {
	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return storage.Storagef("jsonfile: encode graph: %v", err)
	}
	return writeFileAtomic(s.path, data)
}

// Close is a no-op; the store holds no open handles between calls.
func (s *GraphStore) Close() error { return nil }

// writeFileAtomic writes data to a temp file next to path and renames it
// into place. Rename within one directory is atomic on POSIX filesystems.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return storage.Storagef("jsonfile: create temp file in %q: %v", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return storage.Storagef("jsonfile: write %q: %v", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return storage.Storagef("jsonfile: close %q: %v", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return storage.Storagef("jsonfile: rename %q to %q: %v", tmpName, path, err)
	}
	return nil
}
