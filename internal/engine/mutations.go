package engine

import (
	"context"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// ObservationAddition names an entity and the observation strings to append
// to it.
type ObservationAddition struct {
	EntityName string   `json:"entityName"`
	Contents   []string `json:"contents"`
}

// ObservationResult reports, per entity, the observations that were newly
// appended by AddObservations.
type ObservationResult struct {
	EntityName string   `json:"entityName"`
	Added      []string `json:"addedObservations"`
}

// ObservationDeletion names an entity and the exact observation strings to
// remove from it.
type ObservationDeletion struct {
	EntityName   string   `json:"entityName"`
	Observations []string `json:"observations"`
}

// CreateEntities inserts the given entities, skipping any whose name
// already exists (no overwrite, no error). It returns only the subset
// actually inserted, in input order. Any entity type outside the
// enumeration rejects the whole batch before anything is written.
func (e *Engine) CreateEntities(ctx context.Context, entities []types.Entity) ([]types.Entity, error) {
	for _, entity := range entities {
		if !types.IsValidEntityType(entity.EntityType) {
			return nil, storage.Validationf("invalid entity type %q for entity %q", entity.EntityType, entity.Name)
		}
	}

	graph, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	created := []types.Entity{}
	for _, entity := range entities {
		if graph.HasEntity(entity.Name) {
			continue
		}
		if entity.Observations == nil {
			entity.Observations = []string{}
		}
		graph.Entities = append(graph.Entities, entity)
		created = append(created, entity)
	}

	if err := e.store.Save(ctx, graph); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateRelations inserts the given relations, skipping exact-duplicate
// triples. Both endpoints must name existing entities; unknown relation
// types reject the whole batch. Returns only the newly inserted relations.
func (e *Engine) CreateRelations(ctx context.Context, relations []types.Relation) ([]types.Relation, error) {
	for _, rel := range relations {
		if !types.IsValidRelationType(rel.RelationType) {
			return nil, storage.Validationf("invalid relation type %q", rel.RelationType)
		}
	}

	graph, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Referential integrity is checked for the whole batch before any
	// relation is inserted, so a failure leaves the relation set unchanged.
	for _, rel := range relations {
		if !graph.HasEntity(rel.From) {
			return nil, storage.NotFoundf("relation source %q", rel.From)
		}
		if !graph.HasEntity(rel.To) {
			return nil, storage.NotFoundf("relation target %q", rel.To)
		}
	}

	created := []types.Relation{}
	for _, rel := range relations {
		if graph.HasRelation(rel) {
			continue
		}
		graph.Relations = append(graph.Relations, rel)
		created = append(created, rel)
	}

	if err := e.store.Save(ctx, graph); err != nil {
		return nil, err
	}
	return created, nil
}

// AddObservations appends observation strings to existing entities,
// skipping strings already present verbatim. Every named entity must
// exist; a missing one rejects the whole batch. Returns, per entity,
// exactly the strings that were newly appended, order preserved.
func (e *Engine) AddObservations(ctx context.Context, additions []ObservationAddition) ([]ObservationResult, error) {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, add := range additions {
		if !graph.HasEntity(add.EntityName) {
			return nil, storage.NotFoundf("entity %q", add.EntityName)
		}
	}

	results := []ObservationResult{}
	for _, add := range additions {
		entity := graph.FindEntity(add.EntityName)
		added := []string{}
		for _, content := range add.Contents {
			if entity.HasObservation(content) {
				continue
			}
			entity.Observations = append(entity.Observations, content)
			added = append(added, content)
		}
		results = append(results, ObservationResult{EntityName: add.EntityName, Added: added})
	}

	if err := e.store.Save(ctx, graph); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteEntities removes the named entities and cascades to every relation
// where a deleted entity appears on either side. Unknown names are no-ops.
func (e *Engine) DeleteEntities(ctx context.Context, names []string) error {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	doomed := make(map[string]bool, len(names))
	for _, name := range names {
		doomed[name] = true
	}

	entities := graph.Entities[:0]
	for _, entity := range graph.Entities {
		if !doomed[entity.Name] {
			entities = append(entities, entity)
		}
	}
	graph.Entities = entities

	relations := graph.Relations[:0]
	for _, rel := range graph.Relations {
		if !doomed[rel.From] && !doomed[rel.To] {
			relations = append(relations, rel)
		}
	}
	graph.Relations = relations

	return e.store.Save(ctx, graph)
}

// DeleteObservations removes exact-string matches from the named entities'
// observation lists. Missing entities and non-matching strings are no-ops.
func (e *Engine) DeleteObservations(ctx context.Context, deletions []ObservationDeletion) error {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	for _, del := range deletions {
		entity := graph.FindEntity(del.EntityName)
		if entity == nil {
			continue
		}
		doomed := make(map[string]bool, len(del.Observations))
		for _, obs := range del.Observations {
			doomed[obs] = true
		}
		kept := entity.Observations[:0]
		for _, obs := range entity.Observations {
			if !doomed[obs] {
				kept = append(kept, obs)
			}
		}
		entity.Observations = kept
	}

	return e.store.Save(ctx, graph)
}

// DeleteRelations removes relations matching the exact (from, to, type)
// triples. Non-matches are no-ops.
func (e *Engine) DeleteRelations(ctx context.Context, relations []types.Relation) error {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	kept := graph.Relations[:0]
	for _, existing := range graph.Relations {
		matched := false
		for _, rel := range relations {
			if existing.Equal(rel) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, existing)
		}
	}
	graph.Relations = kept

	return e.store.Save(ctx, graph)
}
