package engine

import (
	"context"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// InitializeStatusAndPriority idempotently seeds one entity per value in
// the status and priority enumerations, named "status:<value>" and
// "priority:<value>". Existing entities are never duplicated or
// overwritten.
func (e *Engine) InitializeStatusAndPriority(ctx context.Context) error {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for _, value := range types.ValidStatusValues {
		name := types.StatusEntityName(value)
		if graph.HasEntity(name) {
			continue
		}
		graph.Entities = append(graph.Entities, types.Entity{
			Name:         name,
			EntityType:   types.EntityTypeStatus,
			Observations: []string{},
		})
		changed = true
	}
	for _, value := range types.ValidPriorityValues {
		name := types.PriorityEntityName(value)
		if graph.HasEntity(name) {
			continue
		}
		graph.Entities = append(graph.Entities, types.Entity{
			Name:         name,
			EntityType:   types.EntityTypePriority,
			Observations: []string{},
		})
		changed = true
	}

	if !changed {
		return nil
	}
	return e.store.Save(ctx, graph)
}

// GetEntityStatus returns the value segment of the entity's unique
// has_status edge target, or "" when the entity has no status.
func (e *Engine) GetEntityStatus(ctx context.Context, name string) (string, error) {
	return e.getSideTableValue(ctx, name, types.RelHasStatus, types.StatusValueFromEntityName)
}

// GetEntityPriority returns the value segment of the entity's unique
// has_priority edge target, or "" when the entity has no priority.
func (e *Engine) GetEntityPriority(ctx context.Context, name string) (string, error) {
	return e.getSideTableValue(ctx, name, types.RelHasPriority, types.PriorityValueFromEntityName)
}

func (e *Engine) getSideTableValue(ctx context.Context, name, relType string, parse func(string) (string, bool)) (string, error) {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if !graph.HasEntity(name) {
		return "", storage.NotFoundf("entity %q", name)
	}
	for _, rel := range graph.RelationsFrom(name, relType) {
		if value, ok := parse(rel.To); ok {
			return value, nil
		}
	}
	return "", nil
}

// SetEntityStatus replaces the entity's status: any existing has_status
// edge from the entity is deleted, then the new edge is inserted, so at
// most one status edge exists at any time. The value must be in the
// status enumeration.
func (e *Engine) SetEntityStatus(ctx context.Context, name, value string) error {
	if !types.IsValidStatusValue(value) {
		return storage.Validationf("invalid status value %q", value)
	}
	return e.setSideTableValue(ctx, name, types.RelHasStatus, types.StatusEntityName(value), types.EntityTypeStatus)
}

// SetEntityPriority replaces the entity's priority, enforcing at most one
// has_priority edge. The value must be in the priority enumeration.
func (e *Engine) SetEntityPriority(ctx context.Context, name, value string) error {
	if !types.IsValidPriorityValue(value) {
		return storage.Validationf("invalid priority value %q", value)
	}
	return e.setSideTableValue(ctx, name, types.RelHasPriority, types.PriorityEntityName(value), types.EntityTypePriority)
}

func (e *Engine) setSideTableValue(ctx context.Context, name, relType, targetName, targetType string) error {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	if !graph.HasEntity(name) {
		return storage.NotFoundf("entity %q", name)
	}

	// The value entity normally exists from InitializeStatusAndPriority;
	// seed it here if the store predates initialization.
	if !graph.HasEntity(targetName) {
		graph.Entities = append(graph.Entities, types.Entity{
			Name:         targetName,
			EntityType:   targetType,
			Observations: []string{},
		})
	}

	// Delete-old-edge-then-insert-new-edge, never an in-place update.
	kept := graph.Relations[:0]
	for _, rel := range graph.Relations {
		if rel.From == name && rel.RelationType == relType {
			continue
		}
		kept = append(kept, rel)
	}
	graph.Relations = append(kept, types.Relation{
		From:         name,
		To:           targetName,
		RelationType: relType,
	})

	return e.store.Save(ctx, graph)
}
