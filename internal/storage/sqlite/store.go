// Package sqlite provides a SQLite-backed GraphStore. It keeps the same
// whole-graph load/save contract as the JSON file store: Load reads every
// row, Save replaces all rows in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// Schema is applied on open; all statements are idempotent. Observations
// keep a position column so the append order of the in-memory model
// survives the round trip.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
    name        TEXT PRIMARY KEY,
    entity_type TEXT NOT NULL,
    position    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS observations (
    entity_name TEXT NOT NULL REFERENCES entities(name) ON DELETE CASCADE,
    content     TEXT NOT NULL,
    position    INTEGER NOT NULL,
    PRIMARY KEY (entity_name, position)
);

CREATE TABLE IF NOT EXISTS relations (
    from_entity   TEXT NOT NULL,
    to_entity     TEXT NOT NULL,
    relation_type TEXT NOT NULL,
    position      INTEGER NOT NULL,
    PRIMARY KEY (from_entity, to_entity, relation_type)
);

CREATE INDEX IF NOT EXISTS idx_relations_from ON relations(from_entity);
CREATE INDEX IF NOT EXISTS idx_relations_to ON relations(to_entity);
`

// GraphStore implements storage.GraphStore on SQLite.
type GraphStore struct {
	db *sql.DB
}

// NewGraphStore opens (creating if needed) the database at path and
// applies the schema. Use ":memory:" for an ephemeral store in tests.
func NewGraphStore(path string) (*GraphStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	if path == ":memory:" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storage.Storagef("sqlite: open %q: %v", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, storage.Storagef("sqlite: apply schema: %v", err)
	}
	return &GraphStore{db: db}, nil
}

// Load reads the entire graph, preserving insertion order via the
// position columns.
func (s *GraphStore) Load(ctx context.Context) (*types.KnowledgeGraph, error) {
	graph := types.NewKnowledgeGraph()

	rows, err := s.db.QueryContext(ctx, `SELECT name, entity_type FROM entities ORDER BY position`)
	if err != nil {
		return nil, storage.Storagef("sqlite: query entities: %v", err)
	}
	defer rows.Close()

	byName := map[string]int{}
	for rows.Next() {
		var e types.Entity
		if err := rows.Scan(&e.Name, &e.EntityType); err != nil {
			return nil, storage.Storagef("sqlite: scan entity: %v", err)
		}
		e.Observations = []string{}
		byName[e.Name] = len(graph.Entities)
		graph.Entities = append(graph.Entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Storagef("sqlite: iterate entities: %v", err)
	}

	obsRows, err := s.db.QueryContext(ctx, `SELECT entity_name, content FROM observations ORDER BY entity_name, position`)
	if err != nil {
		return nil, storage.Storagef("sqlite: query observations: %v", err)
	}
	defer obsRows.Close()
	for obsRows.Next() {
		var name, content string
		if err := obsRows.Scan(&name, &content); err != nil {
			return nil, storage.Storagef("sqlite: scan observation: %v", err)
		}
		if i, ok := byName[name]; ok {
			graph.Entities[i].Observations = append(graph.Entities[i].Observations, content)
		}
	}
	if err := obsRows.Err(); err != nil {
		return nil, storage.Storagef("sqlite: iterate observations: %v", err)
	}

	relRows, err := s.db.QueryContext(ctx, `SELECT from_entity, to_entity, relation_type FROM relations ORDER BY position`)
	if err != nil {
		return nil, storage.Storagef("sqlite: query relations: %v", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var r types.Relation
		if err := relRows.Scan(&r.From, &r.To, &r.RelationType); err != nil {
			return nil, storage.Storagef("sqlite: scan relation: %v", err)
		}
		graph.Relations = append(graph.Relations, r)
	}
	if err := relRows.Err(); err != nil {
		return nil, storage.Storagef("sqlite: iterate relations: %v", err)
	}

	return graph, nil
}

// Save replaces the stored graph in one transaction.
func (s *GraphStore) Save(ctx context.Context, graph *types.KnowledgeGraph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Storagef("sqlite: begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"observations", "relations", "entities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storage.Storagef("sqlite: clear %s: %v", table, err)
		}
	}

	for i, e := range graph.Entities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (name, entity_type, position) VALUES (?, ?, ?)`,
			e.Name, e.EntityType, i); err != nil {
			return storage.Storagef("sqlite: insert entity %q: %v", e.Name, err)
		}
		for j, obs := range e.Observations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO observations (entity_name, content, position) VALUES (?, ?, ?)`,
				e.Name, obs, j); err != nil {
				return storage.Storagef("sqlite: insert observation for %q: %v", e.Name, err)
			}
		}
	}
	for i, r := range graph.Relations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relations (from_entity, to_entity, relation_type, position) VALUES (?, ?, ?, ?)`,
			r.From, r.To, r.RelationType, i); err != nil {
			return storage.Storagef("sqlite: insert relation %s-%s: %v", r.From, r.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.Storagef("sqlite: commit: %v", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *GraphStore) Close() error {
	return s.db.Close()
}
