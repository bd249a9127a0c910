package types

import "strings"

// Entity represents a named node in the knowledge graph. The name is the
// global primary key; there are no surrogate IDs. Observations are an
// ordered, de-duplicated list of free-text facts about the entity.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// HasObservation reports whether the entity already holds the exact
// observation string.
func (e *Entity) HasObservation(content string) bool {
	for _, obs := range e.Observations {
		if obs == content {
			return true
		}
	}
	return false
}

// Relation represents a directed, typed edge between two entities,
// referenced by name. No duplicate (from, to, relationType) triples exist
// in a well-formed graph.
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// Equal reports whether two relations are the same (from, to, type) triple.
func (r Relation) Equal(other Relation) bool {
	return r.From == other.From && r.To == other.To && r.RelationType == other.RelationType
}

// KnowledgeGraph is the single persisted aggregate: all entities and all
// relations, loaded and saved wholesale.
type KnowledgeGraph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// NewKnowledgeGraph returns an empty graph with non-nil slices so that it
// serialises as {"entities":[],"relations":[]} rather than null fields.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Entities:  []Entity{},
		Relations: []Relation{},
	}
}

// FindEntity returns a pointer to the entity with the given name, or nil.
// The pointer addresses the graph's backing array, so mutations through it
// are visible in the graph.
func (g *KnowledgeGraph) FindEntity(name string) *Entity {
	for i := range g.Entities {
		if g.Entities[i].Name == name {
			return &g.Entities[i]
		}
	}
	return nil
}

// HasEntity reports whether an entity with the given name exists.
func (g *KnowledgeGraph) HasEntity(name string) bool {
	return g.FindEntity(name) != nil
}

// HasRelation reports whether the exact (from, to, type) triple exists.
func (g *KnowledgeGraph) HasRelation(rel Relation) bool {
	for _, existing := range g.Relations {
		if existing.Equal(rel) {
			return true
		}
	}
	return false
}

// RelationsFrom returns all relations of the given type whose source is name.
func (g *KnowledgeGraph) RelationsFrom(name, relationType string) []Relation {
	var out []Relation
	for _, rel := range g.Relations {
		if rel.From == name && rel.RelationType == relationType {
			out = append(out, rel)
		}
	}
	return out
}

// RelationsTo returns all relations of the given type whose target is name.
func (g *KnowledgeGraph) RelationsTo(name, relationType string) []Relation {
	var out []Relation
	for _, rel := range g.Relations {
		if rel.To == name && rel.RelationType == relationType {
			out = append(out, rel)
		}
	}
	return out
}

// Status and priority entities are named by convention: "status:<value>"
// and "priority:<value>".
const (
	StatusEntityPrefix   = "status:"
	PriorityEntityPrefix = "priority:"
)

// StatusEntityName returns the reserved entity name for a status value.
func StatusEntityName(value string) string {
	return StatusEntityPrefix + value
}

// PriorityEntityName returns the reserved entity name for a priority value.
func PriorityEntityName(value string) string {
	return PriorityEntityPrefix + value
}

// StatusValueFromEntityName extracts the value segment from a status entity
// name. Returns false when the name does not follow the convention.
func StatusValueFromEntityName(name string) (string, bool) {
	if !strings.HasPrefix(name, StatusEntityPrefix) {
		return "", false
	}
	return strings.TrimPrefix(name, StatusEntityPrefix), true
}

// PriorityValueFromEntityName extracts the value segment from a priority
// entity name. Returns false when the name does not follow the convention.
func PriorityValueFromEntityName(name string) (string, bool) {
	if !strings.HasPrefix(name, PriorityEntityPrefix) {
		return "", false
	}
	return strings.TrimPrefix(name, PriorityEntityPrefix), true
}
