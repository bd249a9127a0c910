package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/qualgraph/qualgraph/internal/storage"
)

// SessionStore persists session-stage journals as a single JSON object
// keyed by session ID, each value an ordered list of stage records. The
// structure of each record's data payload is opaque to this package.
type SessionStore struct {
	path string
}

// NewSessionStore creates a session store backed by the given file path.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonfile: session store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, storage.Storagef("jsonfile: create data directory %q: %v", filepath.Dir(path), err)
	}
	return &SessionStore{path: path}, nil
}

// LoadSession returns the ordered stage records for a session. Unknown
// sessions (and a missing file) resolve to an empty journal.
func (s *SessionStore) LoadSession(ctx context.Context, sessionID string) ([]storage.StageRecord, error) {
	sessions, err := s.readAll()
	if err != nil {
		return nil, err
	}
	records, ok := sessions[sessionID]
	if !ok {
		return []storage.StageRecord{}, nil
	}
	return records, nil
}

// AppendStage appends one record to a session's journal and rewrites the
// file atomically.
func (s *SessionStore) AppendStage(ctx context.Context, sessionID string, record storage.StageRecord) error {
	sessions, err := s.readAll()
	if err != nil {
		return err
	}
	sessions[sessionID] = append(sessions[sessionID], record)

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return storage.Storagef("jsonfile: encode sessions: %v", err)
	}
	return writeFileAtomic(s.path, data)
}

// ListSessions returns all known session IDs in lexical order.
func (s *SessionStore) ListSessions(ctx context.Context) ([]string, error) {
	sessions, err := s.readAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *SessionStore) Close() error { return nil }

func (s *SessionStore) readAll() (map[string][]storage.StageRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]storage.StageRecord{}, nil
		}
		return nil, storage.Storagef("jsonfile: read %q: %v", s.path, err)
	}

	sessions := map[string][]storage.StageRecord{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, storage.Storagef("jsonfile: parse %q: %v", s.path, err)
	}
	return sessions, nil
}
