package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

func newTestGraphStore(t *testing.T) (*GraphStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	s, err := NewGraphStore(path)
	if err != nil {
		t.Fatalf("NewGraphStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestLoadMissingFileReturnsEmptyGraph(t *testing.T) {
	s, _ := newTestGraphStore(t)

	g, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(g.Entities) != 0 || len(g.Relations) != 0 {
		t.Errorf("expected empty graph, got %d entities / %d relations", len(g.Entities), len(g.Relations))
	}
	if g.Entities == nil || g.Relations == nil {
		t.Error("empty graph slices must be non-nil")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestGraphStore(t)
	ctx := context.Background()

	in := &types.KnowledgeGraph{
		Entities: []types.Entity{
			{Name: "Study A", EntityType: types.EntityTypeProject, Observations: []string{"Methodology: grounded theory"}},
			{Name: "P1", EntityType: types.EntityTypeParticipant, Observations: []string{}},
		},
		Relations: []types.Relation{
			{From: "P1", To: "Study A", RelationType: types.RelPartOf},
		},
	}

	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out.Entities) != 2 || len(out.Relations) != 1 {
		t.Fatalf("round-trip lost data: %d entities / %d relations", len(out.Entities), len(out.Relations))
	}
	if out.Entities[0].Name != "Study A" || out.Entities[0].Observations[0] != "Methodology: grounded theory" {
		t.Errorf("entity round-trip mismatch: %+v", out.Entities[0])
	}
	if out.Relations[0] != in.Relations[0] {
		t.Errorf("relation round-trip mismatch: %+v", out.Relations[0])
	}
}

func TestSaveWritesPrettyJSON(t *testing.T) {
	s, path := newTestGraphStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, types.NewKnowledgeGraph()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	// Pretty-printed output spans multiple lines and is valid JSON.
	if !json.Valid(data) {
		t.Fatal("store file is not valid JSON")
	}
	if len(data) == 0 || data[len(data)-1] == '}' && !containsNewline(data) {
		t.Error("expected indented, multi-line JSON")
	}
}

func containsNewline(data []byte) bool {
	for _, b := range data {
		if b == '\n' {
			return true
		}
	}
	return false
}

func TestLoadCorruptFileIsStorageError(t *testing.T) {
	s, path := newTestGraphStore(t)

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(context.Background())
	if !errors.Is(err, storage.ErrStorage) {
		t.Errorf("corrupt file should yield ErrStorage, got %v", err)
	}
}

func TestSaveReplacesPriorState(t *testing.T) {
	s, _ := newTestGraphStore(t)
	ctx := context.Background()

	first := &types.KnowledgeGraph{
		Entities:  []types.Entity{{Name: "Old", EntityType: types.EntityTypeMemo, Observations: []string{}}},
		Relations: []types.Relation{},
	}
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := types.NewKnowledgeGraph()
	if err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Entities) != 0 {
		t.Errorf("save must replace, not merge: still %d entities", len(out.Entities))
	}
}

func TestSessionStoreAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	// Unknown session resolves to an empty journal.
	records, err := s.LoadSession(ctx, "nope")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("unknown session should be empty, got %d records", len(records))
	}

	rec1 := storage.StageRecord{Stage: "data_collection", RecordedAt: "2025-03-01T10:00:00Z"}
	rec2 := storage.StageRecord{Stage: "coding", RecordedAt: "2025-03-02T09:00:00Z", Data: map[string]any{"codes": 4.0}}
	if err := s.AppendStage(ctx, "sess-1", rec1); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendStage(ctx, "sess-1", rec2); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendStage(ctx, "sess-2", rec1); err != nil {
		t.Fatal(err)
	}

	records, err = s.LoadSession(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Stage != "data_collection" || records[1].Stage != "coding" {
		t.Errorf("journal order not preserved: %+v", records)
	}

	ids, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "sess-1" || ids[1] != "sess-2" {
		t.Errorf("ListSessions = %v", ids)
	}
}
