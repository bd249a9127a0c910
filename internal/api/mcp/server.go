package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/importer"
	"github.com/qualgraph/qualgraph/internal/session"
	"github.com/qualgraph/qualgraph/internal/storage"
)

// Server implements the Model Context Protocol (MCP) for qualgraph. It
// exposes the graph engine's mutation, search, and analysis operations plus
// the note importer and the session journal as JSON-RPC 2.0 tools.
type Server struct {
	engine   *engine.Engine
	importer *importer.Importer
	sessions *session.Manager
}

// NewServer creates a new MCP server instance. sessions may be nil, in which
// case the session tools report that no journal is configured.
func NewServer(eng *engine.Engine, sessions *session.Manager) *Server {
	return &Server{
		engine:   eng,
		importer: importer.NewImporter(eng),
		sessions: sessions,
	}
}

// HandleRequest processes a JSON-RPC 2.0 request and returns a response.
// This is the main entry point for MCP protocol handling.
func (s *Server) HandleRequest(ctx context.Context, requestJSON []byte) ([]byte, error) {
	var req JSONRPCRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return s.errorResponse(nil, ErrCodeParseError, "Parse error", err.Error())
	}

	if req.JSONRPC != "2.0" {
		return s.errorResponse(req.ID, ErrCodeInvalidRequest, "Invalid JSON-RPC version", nil)
	}

	var result interface{}
	var err error

	switch req.Method {
	// Standard MCP protocol methods
	case "initialize":
		result, err = s.handleInitialize(ctx, req.Params)
	case "initialized", "notifications/initialized":
		// Notification — no response body required; return empty object.
		result = map[string]interface{}{}
	case "tools/list":
		result, err = s.handleToolsList(ctx, req.Params)
	case "tools/call":
		result, err = s.handleToolsCall(ctx, req.Params)

	default:
		// Every tool is also reachable as a native JSON-RPC method for
		// direct callers that skip the MCP envelope.
		var known bool
		result, known, err = s.dispatchTool(ctx, req.Method, req.Params)
		if !known {
			return s.errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
		}
	}

	if err != nil {
		return s.errorResponse(req.ID, errorCode(err), err.Error(), nil)
	}

	return s.successResponse(req.ID, result)
}

// errorCode maps engine and storage errors onto JSON-RPC error codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, storage.ErrValidation):
		return ErrCodeInvalidParams
	case errors.Is(err, storage.ErrNotFound):
		return ErrCodeNotFound
	default:
		return ErrCodeServerError
	}
}

// dispatchTool routes a tool name to its handler. The bool return reports
// whether the name was recognised at all.
func (s *Server) dispatchTool(ctx context.Context, name string, params interface{}) (interface{}, bool, error) {
	var result interface{}
	var err error

	switch name {
	case "create_entities":
		result, err = s.handleCreateEntities(ctx, params)
	case "create_relations":
		result, err = s.handleCreateRelations(ctx, params)
	case "add_observations":
		result, err = s.handleAddObservations(ctx, params)
	case "delete_entities":
		result, err = s.handleDeleteEntities(ctx, params)
	case "delete_observations":
		result, err = s.handleDeleteObservations(ctx, params)
	case "delete_relations":
		result, err = s.handleDeleteRelations(ctx, params)
	case "read_graph":
		result, err = s.engine.ReadGraph(ctx)
	case "search_nodes":
		result, err = s.handleSearchNodes(ctx, params)
	case "open_nodes":
		result, err = s.handleOpenNodes(ctx, params)
	case "get_entity_status":
		result, err = s.handleGetEntityStatus(ctx, params)
	case "set_entity_status":
		result, err = s.handleSetEntityStatus(ctx, params)
	case "get_entity_priority":
		result, err = s.handleGetEntityPriority(ctx, params)
	case "set_entity_priority":
		result, err = s.handleSetEntityPriority(ctx, params)
	case "get_project_overview":
		result, err = s.handleProjectView(ctx, params, func(c context.Context, name string) (interface{}, error) {
			return s.engine.GetProjectOverview(c, name)
		})
	case "get_participant_profile":
		result, err = s.handleGetParticipantProfile(ctx, params)
	case "get_thematic_analysis":
		result, err = s.handleProjectView(ctx, params, func(c context.Context, name string) (interface{}, error) {
			return s.engine.GetThematicAnalysis(c, name)
		})
	case "get_coded_data":
		result, err = s.handleGetCodedData(ctx, params)
	case "get_research_question_analysis":
		result, err = s.handleProjectView(ctx, params, func(c context.Context, name string) (interface{}, error) {
			return s.engine.GetResearchQuestionAnalysis(c, name)
		})
	case "get_chronological_data":
		result, err = s.handleGetChronologicalData(ctx, params)
	case "get_code_cooccurrence":
		result, err = s.handleGetCodeCooccurrence(ctx, params)
	case "get_memos_by_focus":
		result, err = s.handleGetMemosByFocus(ctx, params)
	case "get_methodology_details":
		result, err = s.handleProjectView(ctx, params, func(c context.Context, name string) (interface{}, error) {
			return s.engine.GetMethodologyDetails(c, name)
		})
	case "get_related_entities":
		result, err = s.handleGetRelatedEntities(ctx, params)
	case "import_notes":
		result, err = s.handleImportNotes(ctx, params)
	case "start_session":
		result, err = s.handleStartSession(ctx, params)
	case "record_session_stage":
		result, err = s.handleRecordSessionStage(ctx, params)
	case "get_session":
		result, err = s.handleGetSession(ctx, params)
	default:
		return nil, false, nil
	}

	return result, true, err
}

// ---------------------------------------------------------------------------
// Mutation handlers
// ---------------------------------------------------------------------------

func (s *Server) handleCreateEntities(ctx context.Context, params interface{}) (interface{}, error) {
	var args CreateEntitiesArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	created, err := s.engine.CreateEntities(ctx, args.Entities)
	if err != nil {
		return nil, err
	}
	return &CreateEntitiesResult{Entities: created}, nil
}

func (s *Server) handleCreateRelations(ctx context.Context, params interface{}) (interface{}, error) {
	var args CreateRelationsArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	created, err := s.engine.CreateRelations(ctx, args.Relations)
	if err != nil {
		return nil, err
	}
	return &CreateRelationsResult{Relations: created}, nil
}

func (s *Server) handleAddObservations(ctx context.Context, params interface{}) (interface{}, error) {
	var args AddObservationsArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	results, err := s.engine.AddObservations(ctx, args.Observations)
	if err != nil {
		return nil, err
	}
	return &AddObservationsResult{Results: results}, nil
}

func (s *Server) handleDeleteEntities(ctx context.Context, params interface{}) (interface{}, error) {
	var args DeleteEntitiesArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	if err := s.engine.DeleteEntities(ctx, args.EntityNames); err != nil {
		return nil, err
	}
	return &DeleteResult{Message: "Entities deleted successfully"}, nil
}

func (s *Server) handleDeleteObservations(ctx context.Context, params interface{}) (interface{}, error) {
	var args DeleteObservationsArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	if err := s.engine.DeleteObservations(ctx, args.Deletions); err != nil {
		return nil, err
	}
	return &DeleteResult{Message: "Observations deleted successfully"}, nil
}

func (s *Server) handleDeleteRelations(ctx context.Context, params interface{}) (interface{}, error) {
	var args DeleteRelationsArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	if err := s.engine.DeleteRelations(ctx, args.Relations); err != nil {
		return nil, err
	}
	return &DeleteResult{Message: "Relations deleted successfully"}, nil
}

// ---------------------------------------------------------------------------
// Search handlers
// ---------------------------------------------------------------------------

func (s *Server) handleSearchNodes(ctx context.Context, params interface{}) (interface{}, error) {
	var args SearchNodesArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	return s.engine.SearchNodes(ctx, args.Query)
}

func (s *Server) handleOpenNodes(ctx context.Context, params interface{}) (interface{}, error) {
	var args OpenNodesArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	return s.engine.OpenNodes(ctx, args.Names)
}

// ---------------------------------------------------------------------------
// Status and priority handlers
// ---------------------------------------------------------------------------

func (s *Server) handleGetEntityStatus(ctx context.Context, params interface{}) (interface{}, error) {
	var args EntityStatusArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	value, err := s.engine.GetEntityStatus(ctx, args.EntityName)
	if err != nil {
		return nil, err
	}
	return &EntityStatusResult{EntityName: args.EntityName, Value: value}, nil
}

func (s *Server) handleSetEntityStatus(ctx context.Context, params interface{}) (interface{}, error) {
	var args SetEntityStatusArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	if err := s.engine.SetEntityStatus(ctx, args.EntityName, args.Status); err != nil {
		return nil, err
	}
	return &EntityStatusResult{EntityName: args.EntityName, Value: args.Status}, nil
}

func (s *Server) handleGetEntityPriority(ctx context.Context, params interface{}) (interface{}, error) {
	var args EntityStatusArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	value, err := s.engine.GetEntityPriority(ctx, args.EntityName)
	if err != nil {
		return nil, err
	}
	return &EntityStatusResult{EntityName: args.EntityName, Value: value}, nil
}

func (s *Server) handleSetEntityPriority(ctx context.Context, params interface{}) (interface{}, error) {
	var args SetEntityPriorityArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	if err := s.engine.SetEntityPriority(ctx, args.EntityName, args.Priority); err != nil {
		return nil, err
	}
	return &EntityStatusResult{EntityName: args.EntityName, Value: args.Priority}, nil
}

// ---------------------------------------------------------------------------
// Analysis handlers
// ---------------------------------------------------------------------------

// handleProjectView covers the views whose only argument is the project name.
func (s *Server) handleProjectView(ctx context.Context, params interface{}, view func(context.Context, string) (interface{}, error)) (interface{}, error) {
	var args ProjectArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	return view(ctx, args.ProjectName)
}

func (s *Server) handleGetParticipantProfile(ctx context.Context, params interface{}) (interface{}, error) {
	var args ParticipantArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	return s.engine.GetParticipantProfile(ctx, args.ParticipantName)
}

func (s *Server) handleGetCodedData(ctx context.Context, params interface{}) (interface{}, error) {
	var args CodeArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	return s.engine.GetCodedData(ctx, args.CodeName)
}

func (s *Server) handleGetChronologicalData(ctx context.Context, params interface{}) (interface{}, error) {
	var args ChronologicalDataArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	items, err := s.engine.GetChronologicalData(ctx, args.ProjectName, args.EntityTypes)
	if err != nil {
		return nil, err
	}
	return &ChronologicalDataResult{Items: items}, nil
}

func (s *Server) handleGetCodeCooccurrence(ctx context.Context, params interface{}) (interface{}, error) {
	var args CodeArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	counts, err := s.engine.GetCodeCooccurrence(ctx, args.CodeName)
	if err != nil {
		return nil, err
	}
	return &CodeCooccurrenceResult{Counts: counts}, nil
}

func (s *Server) handleGetMemosByFocus(ctx context.Context, params interface{}) (interface{}, error) {
	var args MemosByFocusArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	memos, err := s.engine.GetMemosByFocus(ctx, args.FocusName)
	if err != nil {
		return nil, err
	}
	return &MemosByFocusResult{Memos: memos}, nil
}

func (s *Server) handleGetRelatedEntities(ctx context.Context, params interface{}) (interface{}, error) {
	var args RelatedEntitiesArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	groups, err := s.engine.GetRelatedEntities(ctx, args.EntityName)
	if err != nil {
		return nil, err
	}
	return &RelatedEntitiesResult{Groups: groups}, nil
}

// ---------------------------------------------------------------------------
// Import handler
// ---------------------------------------------------------------------------

func (s *Server) handleImportNotes(ctx context.Context, params interface{}) (interface{}, error) {
	var args ImportNotesArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	if args.DirPath == "" {
		return nil, storage.Validationf("dirPath is required")
	}
	return s.importer.ImportDirectory(ctx, args.DirPath, args.ProjectName)
}

// ---------------------------------------------------------------------------
// Session handlers
// ---------------------------------------------------------------------------

var errNoSessionJournal = errors.New("session journal is not configured")

func (s *Server) handleStartSession(ctx context.Context, params interface{}) (interface{}, error) {
	if s.sessions == nil {
		return nil, errNoSessionJournal
	}
	var args StartSessionArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	id, err := s.sessions.StartSession(ctx, args.Description)
	if err != nil {
		return nil, err
	}
	return &StartSessionResult{SessionID: id}, nil
}

func (s *Server) handleRecordSessionStage(ctx context.Context, params interface{}) (interface{}, error) {
	if s.sessions == nil {
		return nil, errNoSessionJournal
	}
	var args RecordSessionStageArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	record, err := s.sessions.RecordStage(ctx, args.SessionID, args.Stage, args.Data)
	if err != nil {
		return nil, err
	}
	return &RecordSessionStageResult{SessionID: args.SessionID, Record: record}, nil
}

func (s *Server) handleGetSession(ctx context.Context, params interface{}) (interface{}, error) {
	if s.sessions == nil {
		return nil, errNoSessionJournal
	}
	var args GetSessionArgs
	if err := s.unmarshalParams(params, &args); err != nil {
		return nil, err
	}
	stages, err := s.sessions.GetSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	return &GetSessionResult{SessionID: args.SessionID, Stages: stages}, nil
}

// ---------------------------------------------------------------------------
// MCP protocol handlers
// ---------------------------------------------------------------------------

// handleInitialize handles the MCP initialize handshake.
func (s *Server) handleInitialize(ctx context.Context, params interface{}) (interface{}, error) {
	return MCPInitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities: MCPServerCapabilities{
			Tools: &MCPToolsCapability{},
		},
		ServerInfo: MCPServerInfo{
			Name:    "qualgraph",
			Version: "1.0.0",
		},
	}, nil
}

// handleToolsList returns the list of all tools this server exposes.
func (s *Server) handleToolsList(ctx context.Context, params interface{}) (interface{}, error) {
	return MCPToolsListResult{Tools: s.buildToolsList()}, nil
}

// handleToolsCall dispatches a tools/call request to the appropriate handler
// and wraps the result in the MCP content envelope. Handler errors become
// isError content rather than protocol errors, per the MCP convention.
func (s *Server) handleToolsCall(ctx context.Context, params interface{}) (interface{}, error) {
	var p MCPToolCallParams
	if err := s.unmarshalParams(params, &p); err != nil {
		return nil, err
	}

	// Re-marshal arguments so they can be passed to the handlers, which
	// expect an interface{} produced by JSON unmarshal.
	argsJSON, err := json.Marshal(p.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	var rawParams interface{}
	if err := json.Unmarshal(argsJSON, &rawParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	result, known, handlerErr := s.dispatchTool(ctx, p.Name, rawParams)
	if !known {
		return &MCPToolCallResult{
			Content: []MCPToolCallContent{{Type: "text", Text: fmt.Sprintf("unknown tool: %s", p.Name)}},
			IsError: true,
		}, nil
	}
	if handlerErr != nil {
		return &MCPToolCallResult{
			Content: []MCPToolCallContent{{Type: "text", Text: handlerErr.Error()}},
			IsError: true,
		}, nil
	}

	text, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &MCPToolCallResult{
		Content: []MCPToolCallContent{{Type: "text", Text: string(text)}},
	}, nil
}

// unmarshalParams unmarshals JSON-RPC parameters into a typed struct.
func (s *Server) unmarshalParams(params interface{}, dest interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal params: %w", err)
	}

	return nil
}

// successResponse creates a JSON-RPC success response.
func (s *Server) successResponse(id interface{}, result interface{}) ([]byte, error) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return json.Marshal(resp)
}

// errorResponse creates a JSON-RPC error response.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) ([]byte, error) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
	return json.Marshal(resp)
}
