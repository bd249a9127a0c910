package engine

import (
	"context"
	"strings"

	"github.com/qualgraph/qualgraph/pkg/types"
)

// SearchNodes performs substring multi-term search. The query is split on
// whitespace and lower-cased; an entity matches when every term is found
// as a substring in its name, its type, or at least one observation (OR
// across fields, AND across terms). The result is the induced subgraph:
// matching entities plus every relation whose both endpoints matched.
// Insertion order is preserved; there is no ranking.
func (e *Engine) SearchNodes(ctx context.Context, query string) (*types.KnowledgeGraph, error) {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return types.NewKnowledgeGraph(), nil
	}

	result := types.NewKnowledgeGraph()
	for _, entity := range graph.Entities {
		if entityMatchesAllTerms(entity, terms) {
			result.Entities = append(result.Entities, entity)
		}
	}
	result.Relations = inducedRelations(graph, result.Entities)
	return result, nil
}

// OpenNodes returns the induced subgraph over the entities named exactly
// in names. Unknown names are silently ignored.
func (e *Engine) OpenNodes(ctx context.Context, names []string) (*types.KnowledgeGraph, error) {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	result := types.NewKnowledgeGraph()
	for _, entity := range graph.Entities {
		if wanted[entity.Name] {
			result.Entities = append(result.Entities, entity)
		}
	}
	result.Relations = inducedRelations(graph, result.Entities)
	return result, nil
}

// entityMatchesAllTerms applies AND semantics across terms: each term must
// match somewhere in the entity, but different terms may match different
// fields.
func entityMatchesAllTerms(entity types.Entity, terms []string) bool {
	name := strings.ToLower(entity.Name)
	entityType := strings.ToLower(entity.EntityType)

	for _, term := range terms {
		if strings.Contains(name, term) || strings.Contains(entityType, term) {
			continue
		}
		found := false
		for _, obs := range entity.Observations {
			if strings.Contains(strings.ToLower(obs), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// inducedRelations returns the relations of graph whose both endpoints are
// in the entity subset, preserving the graph's relation order.
func inducedRelations(graph *types.KnowledgeGraph, entities []types.Entity) []types.Relation {
	members := make(map[string]bool, len(entities))
	for _, entity := range entities {
		members[entity.Name] = true
	}

	relations := []types.Relation{}
	for _, rel := range graph.Relations {
		if members[rel.From] && members[rel.To] {
			relations = append(relations, rel)
		}
	}
	return relations
}
