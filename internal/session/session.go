// Package session records research-session stage journals. It sits outside
// the graph engine: stage payloads are opaque JSON objects replayed to the
// caller, never interpreted. Cross-call state lives in the session store
// file, not in memory.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/qualgraph/qualgraph/internal/storage"
)

// Manager creates sessions and appends stage records to their journals.
type Manager struct {
	store storage.SessionStore
}

// NewManager creates a manager backed by the given session store.
func NewManager(store storage.SessionStore) *Manager {
	return &Manager{store: store}
}

// StartSession allocates a fresh session ID and writes an opening record
// so the session is visible in ListSessions immediately.
func (m *Manager) StartSession(ctx context.Context, description string) (string, error) {
	id := uuid.New().String()
	record := storage.StageRecord{
		Stage:      "session_started",
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if description != "" {
		record.Data = map[string]any{"description": description}
	}
	if err := m.store.AppendStage(ctx, id, record); err != nil {
		return "", err
	}
	return id, nil
}

// RecordStage appends one stage record to a session's journal. The data
// payload is stored as-is.
func (m *Manager) RecordStage(ctx context.Context, sessionID, stage string, data map[string]any) (storage.StageRecord, error) {
	record := storage.StageRecord{
		Stage:      stage,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
		Data:       data,
	}
	if err := m.store.AppendStage(ctx, sessionID, record); err != nil {
		return storage.StageRecord{}, err
	}
	return record, nil
}

// GetSession returns a session's journal in recorded order.
func (m *Manager) GetSession(ctx context.Context, sessionID string) ([]storage.StageRecord, error) {
	return m.store.LoadSession(ctx, sessionID)
}

// ListSessions returns all known session IDs.
func (m *Manager) ListSessions(ctx context.Context) ([]string, error) {
	return m.store.ListSessions(ctx)
}
