package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

func newTestEngine(t *testing.T) (*Engine, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	return NewEngine(store), store
}

func mustCreateEntities(t *testing.T, e *Engine, entities ...types.Entity) {
	t.Helper()
	if _, err := e.CreateEntities(context.Background(), entities); err != nil {
		t.Fatalf("CreateEntities: %v", err)
	}
}

func mustCreateRelations(t *testing.T, e *Engine, relations ...types.Relation) {
	t.Helper()
	if _, err := e.CreateRelations(context.Background(), relations); err != nil {
		t.Fatalf("CreateRelations: %v", err)
	}
}

func TestCreateEntitiesIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	participant := types.Entity{Name: "P1", EntityType: types.EntityTypeParticipant}

	created, err := e.CreateEntities(ctx, []types.Entity{participant})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if len(created) != 1 || created[0].Name != "P1" {
		t.Fatalf("first create returned %+v", created)
	}

	created, err = e.CreateEntities(ctx, []types.Entity{participant})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second create should report nothing created, got %+v", created)
	}

	graph, _ := e.ReadGraph(ctx)
	count := 0
	for _, entity := range graph.Entities {
		if entity.Name == "P1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("entity present %d times, want exactly once", count)
	}
}

func TestCreateEntitiesSkipsExistingKeepsOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e, types.Entity{Name: "B", EntityType: types.EntityTypeCode})

	created, err := e.CreateEntities(ctx, []types.Entity{
		{Name: "A", EntityType: types.EntityTypeCode},
		{Name: "B", EntityType: types.EntityTypeCode},
		{Name: "C", EntityType: types.EntityTypeCode},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 || created[0].Name != "A" || created[1].Name != "C" {
		t.Errorf("created = %+v, want [A C] in input order", created)
	}

	// Existing entity was not overwritten.
	graph, _ := e.ReadGraph(ctx)
	if b := graph.FindEntity("B"); b == nil || b.EntityType != types.EntityTypeCode {
		t.Errorf("existing entity modified: %+v", b)
	}
}

func TestCreateEntitiesRejectsUnknownTypeBeforeMutating(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateEntities(ctx, []types.Entity{
		{Name: "Good", EntityType: types.EntityTypeMemo},
		{Name: "Bad", EntityType: "spreadsheet"},
	})
	if !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.SaveCount != 0 {
		t.Error("validation failure must reject the whole batch without saving")
	}
}

func TestCreateRelationsReferentialIntegrity(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e, types.Entity{Name: "Alpha", EntityType: types.EntityTypeCode})

	_, err := e.CreateRelations(ctx, []types.Relation{
		{From: "Ghost", To: "Alpha", RelationType: types.RelRelatedTo},
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	graph, _ := e.ReadGraph(ctx)
	if len(graph.Relations) != 0 {
		t.Errorf("relation set must stay unchanged, got %+v", graph.Relations)
	}
}

func TestCreateRelationsRejectsUnknownType(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e,
		types.Entity{Name: "A", EntityType: types.EntityTypeCode},
		types.Entity{Name: "B", EntityType: types.EntityTypeCode},
	)

	_, err := e.CreateRelations(ctx, []types.Relation{
		{From: "A", To: "B", RelationType: "likes"},
	})
	if !errors.Is(err, storage.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateRelationsSkipsDuplicateTriples(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e,
		types.Entity{Name: "A", EntityType: types.EntityTypeCode},
		types.Entity{Name: "B", EntityType: types.EntityTypeQuote},
	)
	rel := types.Relation{From: "A", To: "B", RelationType: types.RelCodes}
	mustCreateRelations(t, e, rel)

	created, err := e.CreateRelations(ctx, []types.Relation{
		rel,
		{From: "B", To: "A", RelationType: types.RelRelatedTo},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 || created[0].RelationType != types.RelRelatedTo {
		t.Errorf("created = %+v, want only the new relation", created)
	}

	graph, _ := e.ReadGraph(ctx)
	if len(graph.Relations) != 2 {
		t.Errorf("graph holds %d relations, want 2", len(graph.Relations))
	}
}

func TestAddObservationsDedup(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e, types.Entity{Name: "P1", EntityType: types.EntityTypeParticipant})

	results, err := e.AddObservations(ctx, []ObservationAddition{
		{EntityName: "P1", Contents: []string{"age 34", "lives in Porto"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || len(results[0].Added) != 2 {
		t.Fatalf("first add reported %+v", results)
	}

	results, err = e.AddObservations(ctx, []ObservationAddition{
		{EntityName: "P1", Contents: []string{"age 34", "prefers mornings"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results[0].Added) != 1 || results[0].Added[0] != "prefers mornings" {
		t.Errorf("second add = %+v, want only the new string", results[0].Added)
	}

	graph, _ := e.ReadGraph(ctx)
	p := graph.FindEntity("P1")
	if len(p.Observations) != 3 {
		t.Errorf("observations = %v, want 3 unique entries", p.Observations)
	}
}

func TestAddObservationsMissingEntity(t *testing.T) {
	e, store := newTestEngine(t)

	_, err := e.AddObservations(context.Background(), []ObservationAddition{
		{EntityName: "Ghost", Contents: []string{"x"}},
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if store.SaveCount != 0 {
		t.Error("failed add must not save")
	}
}

func TestDeleteEntitiesCascades(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e,
		types.Entity{Name: "A", EntityType: types.EntityTypeCode},
		types.Entity{Name: "B", EntityType: types.EntityTypeQuote, Observations: []string{"kept"}},
	)
	mustCreateRelations(t, e, types.Relation{From: "A", To: "B", RelationType: types.RelCodes})

	if err := e.DeleteEntities(ctx, []string{"A"}); err != nil {
		t.Fatal(err)
	}

	graph, _ := e.ReadGraph(ctx)
	if graph.HasEntity("A") {
		t.Error("A should be gone")
	}
	if len(graph.Relations) != 0 {
		t.Errorf("incident relations must cascade, got %+v", graph.Relations)
	}
	b := graph.FindEntity("B")
	if b == nil || !b.HasObservation("kept") {
		t.Errorf("B must survive with its observations intact: %+v", b)
	}
}

func TestDeleteEntitiesUnknownNamesNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.DeleteEntities(context.Background(), []string{"Ghost"}); err != nil {
		t.Errorf("deleting unknown names must not error: %v", err)
	}
}

func TestDeleteObservations(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e, types.Entity{
		Name:         "M1",
		EntityType:   types.EntityTypeMemo,
		Observations: []string{"one", "two", "three"},
	})

	err := e.DeleteObservations(ctx, []ObservationDeletion{
		{EntityName: "M1", Observations: []string{"two", "never there"}},
		{EntityName: "Ghost", Observations: []string{"x"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	graph, _ := e.ReadGraph(ctx)
	m := graph.FindEntity("M1")
	if len(m.Observations) != 2 || m.Observations[0] != "one" || m.Observations[1] != "three" {
		t.Errorf("observations = %v", m.Observations)
	}
}

func TestDeleteRelationsExactTriple(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateEntities(t, e,
		types.Entity{Name: "A", EntityType: types.EntityTypeCode},
		types.Entity{Name: "B", EntityType: types.EntityTypeQuote},
	)
	mustCreateRelations(t, e,
		types.Relation{From: "A", To: "B", RelationType: types.RelCodes},
		types.Relation{From: "A", To: "B", RelationType: types.RelRelatedTo},
	)

	err := e.DeleteRelations(ctx, []types.Relation{
		{From: "A", To: "B", RelationType: types.RelCodes},
		{From: "B", To: "A", RelationType: types.RelRelatedTo}, // wrong direction, no-op
	})
	if err != nil {
		t.Fatal(err)
	}

	graph, _ := e.ReadGraph(ctx)
	if len(graph.Relations) != 1 || graph.Relations[0].RelationType != types.RelRelatedTo {
		t.Errorf("relations = %+v", graph.Relations)
	}
}

func TestMutationsSurfaceStorageErrors(t *testing.T) {
	e, store := newTestEngine(t)
	store.FailLoad = storage.Storagef("disk gone")

	if _, err := e.CreateEntities(context.Background(), nil); !errors.Is(err, storage.ErrStorage) {
		t.Errorf("load failure must surface, got %v", err)
	}
}
