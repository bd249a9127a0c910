package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/session"
	"github.com/qualgraph/qualgraph/internal/storage"
)

// ErrorResponse is the JSON shape of every API error.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// GraphHandlers contains the read-only HTTP handlers backed by the graph
// engine. The viewer never mutates; all writes go through the MCP server.
type GraphHandlers struct {
	engine   *engine.Engine
	sessions *session.Manager
}

// NewGraphHandlers creates a GraphHandlers instance. sessions may be nil when
// no session journal is configured; the session routes then return 404.
func NewGraphHandlers(eng *engine.Engine, sessions *session.Manager) *GraphHandlers {
	return &GraphHandlers{engine: eng, sessions: sessions}
}

// GetGraph handles GET /api/graph - the full graph snapshot.
func (h *GraphHandlers) GetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.engine.ReadGraph(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, graph)
}

// Search handles GET /api/search?q=... - substring search returning the
// matching entities and the relations among them.
func (h *GraphHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	result, err := h.engine.SearchNodes(r.Context(), query)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetOverview handles GET /api/overview?project=... - the project summary
// view.
func (h *GraphHandlers) GetOverview(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		respondError(w, http.StatusBadRequest, "missing project query parameter", nil)
		return
	}
	overview, err := h.engine.GetProjectOverview(r.Context(), project)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// GetEntity handles GET /api/entities?name=... - one entity with its
// neighbours grouped by relation type.
func (h *GraphHandlers) GetEntity(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing name query parameter", nil)
		return
	}

	opened, err := h.engine.OpenNodes(r.Context(), []string{name})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if len(opened.Entities) == 0 {
		respondError(w, http.StatusNotFound, "entity not found", nil)
		return
	}
	groups, err := h.engine.GetRelatedEntities(r.Context(), name)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entity":  opened.Entities[0],
		"related": groups,
	})
}

// ListSessions handles GET /api/sessions - the known analysis session IDs.
func (h *GraphHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		respondError(w, http.StatusNotFound, "session journal not configured", nil)
		return
	}
	ids, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": ids})
}

// GetSession handles GET /api/sessions/{id} - one session's stage records.
func (h *GraphHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		respondError(w, http.StatusNotFound, "session journal not configured", nil)
		return
	}
	id := r.PathValue("id")
	stages, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": id,
		"stages":    stages,
	})
}

// respondEngineError translates engine error classes into HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, storage.ErrValidation):
		respondError(w, http.StatusBadRequest, "invalid request", err)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing left to do but log.
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = map[string]interface{}{"error": err.Error()}
	}
	respondJSON(w, statusCode, errResp)
}
