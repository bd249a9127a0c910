// Package mcp implements the Model Context Protocol (MCP) server for
// qualgraph. It provides JSON-RPC 2.0 based tools for building, querying, and
// analysing the research knowledge graph.
package mcp

import (
	"github.com/qualgraph/qualgraph/internal/engine"
	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// CreateEntitiesArgs contains arguments for the create_entities tool.
type CreateEntitiesArgs struct {
	Entities []types.Entity `json:"entities"`
}

// CreateEntitiesResult lists only the entities that were actually inserted;
// names that already existed are silently skipped.
type CreateEntitiesResult struct {
	Entities []types.Entity `json:"entities"`
}

// CreateRelationsArgs contains arguments for the create_relations tool.
type CreateRelationsArgs struct {
	Relations []types.Relation `json:"relations"`
}

// CreateRelationsResult lists only the relations that were actually inserted.
type CreateRelationsResult struct {
	Relations []types.Relation `json:"relations"`
}

// AddObservationsArgs contains arguments for the add_observations tool.
type AddObservationsArgs struct {
	Observations []engine.ObservationAddition `json:"observations"`
}

// AddObservationsResult reports the observations newly appended per entity.
type AddObservationsResult struct {
	Results []engine.ObservationResult `json:"results"`
}

// DeleteEntitiesArgs contains arguments for the delete_entities tool.
type DeleteEntitiesArgs struct {
	EntityNames []string `json:"entityNames"`
}

// DeleteObservationsArgs contains arguments for the delete_observations tool.
type DeleteObservationsArgs struct {
	Deletions []engine.ObservationDeletion `json:"deletions"`
}

// DeleteRelationsArgs contains arguments for the delete_relations tool.
type DeleteRelationsArgs struct {
	Relations []types.Relation `json:"relations"`
}

// DeleteResult is the shared acknowledgement for the delete tools, which
// succeed whether or not the named items existed.
type DeleteResult struct {
	Message string `json:"message"`
}

// SearchNodesArgs contains arguments for the search_nodes tool.
type SearchNodesArgs struct {
	Query string `json:"query"`
}

// OpenNodesArgs contains arguments for the open_nodes tool.
type OpenNodesArgs struct {
	Names []string `json:"names"`
}

// EntityStatusArgs names the entity for the get_entity_status and
// get_entity_priority tools.
type EntityStatusArgs struct {
	EntityName string `json:"entityName"`
}

// SetEntityStatusArgs contains arguments for the set_entity_status tool.
type SetEntityStatusArgs struct {
	EntityName string `json:"entityName"`
	Status     string `json:"status"`
}

// SetEntityPriorityArgs contains arguments for the set_entity_priority tool.
type SetEntityPriorityArgs struct {
	EntityName string `json:"entityName"`
	Priority   string `json:"priority"`
}

// EntityStatusResult is returned by the status/priority tools. Value is empty
// when the entity exists but carries no status or priority edge.
type EntityStatusResult struct {
	EntityName string `json:"entityName"`
	Value      string `json:"value"`
}

// ProjectArgs names the project root for the project-scoped analysis tools.
type ProjectArgs struct {
	ProjectName string `json:"projectName"`
}

// ParticipantArgs contains arguments for the get_participant_profile tool.
type ParticipantArgs struct {
	ParticipantName string `json:"participantName"`
}

// CodeArgs contains arguments for the get_coded_data and
// get_code_cooccurrence tools.
type CodeArgs struct {
	CodeName string `json:"codeName"`
}

// ChronologicalDataArgs contains arguments for the get_chronological_data
// tool. EntityTypes defaults to the data-source types when empty.
type ChronologicalDataArgs struct {
	ProjectName string   `json:"projectName"`
	EntityTypes []string `json:"entityTypes,omitempty"`
}

// MemosByFocusArgs contains arguments for the get_memos_by_focus tool.
type MemosByFocusArgs struct {
	FocusName string `json:"focusName"`
}

// RelatedEntitiesArgs contains arguments for the get_related_entities tool.
type RelatedEntitiesArgs struct {
	EntityName string `json:"entityName"`
}

// ChronologicalDataResult wraps the date-ordered item list.
type ChronologicalDataResult struct {
	Items []engine.ChronologicalItem `json:"items"`
}

// CodeCooccurrenceResult wraps the co-occurrence counts, most frequent first.
type CodeCooccurrenceResult struct {
	Counts []engine.CooccurrenceCount `json:"counts"`
}

// MemosByFocusResult wraps the memos reflecting on the focus entity.
type MemosByFocusResult struct {
	Memos []types.Entity `json:"memos"`
}

// RelatedEntitiesResult wraps the per-relation-type neighbour groups.
type RelatedEntitiesResult struct {
	Groups []engine.RelationGroup `json:"groups"`
}

// ImportNotesArgs contains arguments for the import_notes tool.
type ImportNotesArgs struct {
	DirPath     string `json:"dirPath"`
	ProjectName string `json:"projectName,omitempty"`
}

// StartSessionArgs contains arguments for the start_session tool.
type StartSessionArgs struct {
	Description string `json:"description,omitempty"`
}

// StartSessionResult returns the generated session ID.
type StartSessionResult struct {
	SessionID string `json:"sessionId"`
}

// RecordSessionStageArgs contains arguments for the record_session_stage tool.
type RecordSessionStageArgs struct {
	SessionID string         `json:"sessionId"`
	Stage     string         `json:"stage"`
	Data      map[string]any `json:"data,omitempty"`
}

// RecordSessionStageResult returns the stored stage record.
type RecordSessionStageResult struct {
	SessionID string              `json:"sessionId"`
	Record    storage.StageRecord `json:"record"`
}

// GetSessionArgs contains arguments for the get_session tool.
type GetSessionArgs struct {
	SessionID string `json:"sessionId"`
}

// GetSessionResult returns a session's stage records in append order.
type GetSessionResult struct {
	SessionID string                `json:"sessionId"`
	Stages    []storage.StageRecord `json:"stages"`
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"` // Must be "2.0"
	Method  string      `json:"method"`  // Method name
	Params  interface{} `json:"params"`  // Method parameters
	ID      interface{} `json:"id"`      // Request ID (string, number, or null)
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`          // Must be "2.0"
	Result  interface{}   `json:"result,omitempty"` // Result (if successful)
	Error   *JSONRPCError `json:"error,omitempty"`  // Error (if failed)
	ID      interface{}   `json:"id"`               // Request ID
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	Code    int         `json:"code"`           // Error code
	Message string      `json:"message"`        // Error message
	Data    interface{} `json:"data,omitempty"` // Additional error data
}

// JSON-RPC error codes
const (
	ErrCodeParseError     = -32700 // Invalid JSON
	ErrCodeInvalidRequest = -32600 // Invalid request object
	ErrCodeMethodNotFound = -32601 // Method not found
	ErrCodeInvalidParams  = -32602 // Invalid method parameters
	ErrCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrCodeServerError    = -32000 // Server error
	ErrCodeNotFound       = -32001 // Named entity or session does not exist
)

// ---------------------------------------------------------------------------
// Standard MCP protocol types (initialize / tools/list / tools/call)
// ---------------------------------------------------------------------------

// MCPInitializeParams holds the parameters sent by an MCP client in the
// initialize request.
type MCPInitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities,omitempty"`
	ClientInfo      MCPClientInfo          `json:"clientInfo"`
}

// MCPClientInfo identifies the connecting MCP client.
type MCPClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCPServerInfo identifies this MCP server.
type MCPServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCPServerCapabilities describes what this server supports.
type MCPServerCapabilities struct {
	Tools *MCPToolsCapability `json:"tools,omitempty"`
}

// MCPToolsCapability signals that the server exposes tools.
type MCPToolsCapability struct{}

// MCPInitializeResult is the response to the initialize request.
type MCPInitializeResult struct {
	ProtocolVersion string                `json:"protocolVersion"`
	Capabilities    MCPServerCapabilities `json:"capabilities"`
	ServerInfo      MCPServerInfo         `json:"serverInfo"`
}

// MCPTool describes a single tool exposed via the MCP tools/list endpoint.
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// MCPToolsListResult is the response to the tools/list request.
type MCPToolsListResult struct {
	Tools []MCPTool `json:"tools"`
}

// MCPToolCallParams holds the parameters sent in a tools/call request.
type MCPToolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// MCPToolCallContent is a single content block in a tool call response.
type MCPToolCallContent struct {
	Type string `json:"type"` // always "text" for now
	Text string `json:"text"`
}

// MCPToolCallResult is the response to a tools/call request.
type MCPToolCallResult struct {
	Content []MCPToolCallContent `json:"content"`
	IsError bool                 `json:"isError,omitempty"`
}
