package mcp

// Shared inputSchema fragments for the tool catalog.

func entityArraySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":     "object",
			"required": []string{"name", "entityType"},
			"properties": map[string]interface{}{
				"name":         map[string]interface{}{"type": "string", "description": "Unique entity name"},
				"entityType":   map[string]interface{}{"type": "string", "description": "One of: project, researchQuestion, methodology, participant, interview, observation, document, quote, code, codeGroup, theme, finding, memo, status, priority"},
				"observations": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Free-text observations attached to the entity"},
			},
		},
	}
}

func relationArraySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":     "object",
			"required": []string{"from", "to", "relationType"},
			"properties": map[string]interface{}{
				"from":         map[string]interface{}{"type": "string", "description": "Source entity name"},
				"to":           map[string]interface{}{"type": "string", "description": "Target entity name"},
				"relationType": map[string]interface{}{"type": "string", "description": "One of: part_of, participated_in, contains, codes, supports, reflects_on, answers, precedes, triangulates_with, contradicts, related_to, has_status, has_priority"},
			},
		},
	}
}

func projectNameSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"projectName"},
		"properties": map[string]interface{}{
			"projectName": map[string]interface{}{"type": "string", "description": "Name of the project entity"},
		},
	}
}

func entityNameSchema(field, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{field},
		"properties": map[string]interface{}{
			field: map[string]interface{}{"type": "string", "description": description},
		},
	}
}

// buildToolsList returns the canonical list of MCP tool definitions.
func (s *Server) buildToolsList() []MCPTool {
	return []MCPTool{
		{
			Name:        "create_entities",
			Description: "Create entities in the research graph (projects, participants, interviews, quotes, codes, themes, findings, memos, ...). Names that already exist are skipped, never overwritten; the result lists only what was actually created. An invalid entityType rejects the whole batch.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"entities"},
				"properties": map[string]interface{}{
					"entities": entityArraySchema(),
				},
			},
		},
		{
			Name:        "create_relations",
			Description: "Create typed relations between existing entities (e.g. quote part_of project, code codes quote, theme answers researchQuestion). Both endpoints must exist; duplicate triples are skipped. The result lists only what was actually created.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"relations"},
				"properties": map[string]interface{}{
					"relations": relationArraySchema(),
				},
			},
		},
		{
			Name:        "add_observations",
			Description: "Append free-text observations to existing entities. Observations an entity already carries are skipped; the result lists only what was newly added per entity. Every named entity must exist.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"observations"},
				"properties": map[string]interface{}{
					"observations": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "object",
							"required": []string{"entityName", "contents"},
							"properties": map[string]interface{}{
								"entityName": map[string]interface{}{"type": "string", "description": "Entity to append to"},
								"contents":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Observation strings to append"},
							},
						},
					},
				},
			},
		},
		{
			Name:        "delete_entities",
			Description: "Delete entities and cascade-delete every relation touching them. Unknown names are ignored.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"entityNames"},
				"properties": map[string]interface{}{
					"entityNames": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Entity names to delete"},
				},
			},
		},
		{
			Name:        "delete_observations",
			Description: "Remove specific observation strings from entities. Unknown entities and absent observations are ignored.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"deletions"},
				"properties": map[string]interface{}{
					"deletions": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "object",
							"required": []string{"entityName", "observations"},
							"properties": map[string]interface{}{
								"entityName":   map[string]interface{}{"type": "string", "description": "Entity to remove from"},
								"observations": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Exact observation strings to remove"},
							},
						},
					},
				},
			},
		},
		{
			Name:        "delete_relations",
			Description: "Delete relations matching the given (from, to, relationType) triples exactly. Absent triples are ignored.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"relations"},
				"properties": map[string]interface{}{
					"relations": relationArraySchema(),
				},
			},
		},
		{
			Name:        "read_graph",
			Description: "Return the entire research graph: all entities with their observations, and all relations.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "search_nodes",
			Description: "Substring search across entity names, types, and observations. Every whitespace-separated term must match somewhere in an entity (case-insensitive). Returns the matching entities plus the relations among them.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"query"},
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string", "description": "Search terms; all must match"},
				},
			},
		},
		{
			Name:        "open_nodes",
			Description: "Fetch specific entities by exact name plus the relations among them. Unknown names are silently omitted.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"names"},
				"properties": map[string]interface{}{
					"names": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Exact entity names to fetch"},
				},
			},
		},
		{
			Name:        "get_entity_status",
			Description: "Get an entity's workflow status (draft, in_progress, under_review, final, archived). Empty value when no status is set.",
			InputSchema: entityNameSchema("entityName", "Entity to query"),
		},
		{
			Name:        "set_entity_status",
			Description: "Set an entity's workflow status, replacing any previous status. Valid values: draft, in_progress, under_review, final, archived.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"entityName", "status"},
				"properties": map[string]interface{}{
					"entityName": map[string]interface{}{"type": "string", "description": "Entity to update"},
					"status":     map[string]interface{}{"type": "string", "description": "New status value"},
				},
			},
		},
		{
			Name:        "get_entity_priority",
			Description: "Get an entity's priority (low, medium, high, critical). Empty value when no priority is set.",
			InputSchema: entityNameSchema("entityName", "Entity to query"),
		},
		{
			Name:        "set_entity_priority",
			Description: "Set an entity's priority, replacing any previous priority. Valid values: low, medium, high, critical.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"entityName", "priority"},
				"properties": map[string]interface{}{
					"entityName": map[string]interface{}{"type": "string", "description": "Entity to update"},
					"priority":   map[string]interface{}{"type": "string", "description": "New priority value"},
				},
			},
		},
		{
			Name:        "get_project_overview",
			Description: "Summarise a project: methodology notes, research questions, participants, data sources, themes, and findings attached via part_of.",
			InputSchema: projectNameSchema(),
		},
		{
			Name:        "get_participant_profile",
			Description: "Profile a participant: demographic observations, the data sources they took part in, their quotes, and memos reflecting on them.",
			InputSchema: entityNameSchema("participantName", "Name of the participant entity"),
		},
		{
			Name:        "get_thematic_analysis",
			Description: "List a project's themes with their workflow status, supporting codes (each with its quotes), and related memos.",
			InputSchema: projectNameSchema(),
		},
		{
			Name:        "get_coded_data",
			Description: "Show everything attached to a code: its code groups, the quotes it codes (with their sources), themes it supports, and memos reflecting on it.",
			InputSchema: entityNameSchema("codeName", "Name of the code entity"),
		},
		{
			Name:        "get_research_question_analysis",
			Description: "For each research question in a project, list the findings, themes, and quotes that answer it.",
			InputSchema: projectNameSchema(),
		},
		{
			Name:        "get_chronological_data",
			Description: "List a project's data sources ordered by their Date:/Collected on:/Created: observations, oldest first. Items without a parseable date sort first.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"projectName"},
				"properties": map[string]interface{}{
					"projectName": map[string]interface{}{"type": "string", "description": "Name of the project entity"},
					"entityTypes": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Entity types to include (default: interview, observation, document)"},
				},
			},
		},
		{
			Name:        "get_code_cooccurrence",
			Description: "Count how often other codes are applied to the same quotes as the given code, most frequent first.",
			InputSchema: entityNameSchema("codeName", "Name of the code entity"),
		},
		{
			Name:        "get_memos_by_focus",
			Description: "List the memos that reflect on a given entity.",
			InputSchema: entityNameSchema("focusName", "Entity the memos reflect on"),
		},
		{
			Name:        "get_methodology_details",
			Description: "Return a project's methodology entities and its method-related observations.",
			InputSchema: projectNameSchema(),
		},
		{
			Name:        "get_related_entities",
			Description: "Group an entity's direct neighbours by relation type, split into outgoing and incoming edges.",
			InputSchema: entityNameSchema("entityName", "Entity to inspect"),
		},
		{
			Name:        "import_notes",
			Description: "Import a directory of Markdown notes as entities. Frontmatter supplies name, type, date, and tags; paragraphs become observations; wikilinks to known entities become related_to relations. When projectName is given every note is attached to the project with part_of. Re-importing the same directory is a no-op.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"dirPath"},
				"properties": map[string]interface{}{
					"dirPath":     map[string]interface{}{"type": "string", "description": "Directory to scan for .md files, recursively"},
					"projectName": map[string]interface{}{"type": "string", "description": "Optional project entity to attach every imported note to"},
				},
			},
		},
		{
			Name:        "start_session",
			Description: "Start a new analysis session and return its ID. Use record_session_stage to journal progress against it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"description": map[string]interface{}{"type": "string", "description": "Optional description of the session's purpose"},
				},
			},
		},
		{
			Name:        "record_session_stage",
			Description: "Append a stage record to an analysis session's journal (e.g. familiarisation, coding, theme_review). Data is stored as-is.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"sessionId", "stage"},
				"properties": map[string]interface{}{
					"sessionId": map[string]interface{}{"type": "string", "description": "Session ID from start_session"},
					"stage":     map[string]interface{}{"type": "string", "description": "Stage name"},
					"data":      map[string]interface{}{"type": "object", "description": "Arbitrary stage payload"},
				},
			},
		},
		{
			Name:        "get_session",
			Description: "Return an analysis session's stage records in the order they were recorded.",
			InputSchema: entityNameSchema("sessionId", "Session ID from start_session"),
		},
	}
}
