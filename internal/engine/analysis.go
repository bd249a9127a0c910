package engine

import (
	"context"
	"sort"
	"time"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// Analytical views are pure read computations: one Load, no Save. Each
// fails with a not-found error when its root entity is missing; missing
// optional sub-data yields empty lists, never an error.

// ProjectOverview is the top-level report for a project.
type ProjectOverview struct {
	Project           types.Entity   `json:"project"`
	Methodology       []string       `json:"methodology"`
	ResearchQuestions []types.Entity `json:"researchQuestions"`
	Participants      []types.Entity `json:"participants"`
	DataSources       []types.Entity `json:"dataSources"`
	Themes            []types.Entity `json:"themes"`
	Findings          []types.Entity `json:"findings"`
}

// ParticipantProfile aggregates everything known about one participant.
type ParticipantProfile struct {
	Participant  types.Entity   `json:"participant"`
	Demographics []string       `json:"demographics"`
	DataSources  []types.Entity `json:"dataSources"`
	Quotes       []types.Entity `json:"quotes"`
	Memos        []types.Entity `json:"memos"`
}

// ThemeAnalysis is one theme's slice of a thematic analysis.
type ThemeAnalysis struct {
	Theme  types.Entity   `json:"theme"`
	Status string         `json:"status,omitempty"`
	Codes  []CodeWithQuotes `json:"codes"`
	Memos  []types.Entity `json:"memos"`
}

// CodeWithQuotes pairs a code with the quotes it tags.
type CodeWithQuotes struct {
	Code   types.Entity   `json:"code"`
	Quotes []types.Entity `json:"quotes"`
}

// ThematicAnalysis is the per-project thematic analysis report.
type ThematicAnalysis struct {
	Project types.Entity    `json:"project"`
	Themes  []ThemeAnalysis `json:"themes"`
}

// CodedData resolves a code's position in the coding system.
type CodedData struct {
	Code       types.Entity   `json:"code"`
	CodeGroups []types.Entity `json:"codeGroups"`
	Quotes     []QuoteWithSources `json:"quotes"`
	Themes     []types.Entity `json:"themes"`
	Memos      []types.Entity `json:"memos"`
}

// QuoteWithSources pairs a tagged quote with the data sources containing it.
type QuoteWithSources struct {
	Quote   types.Entity   `json:"quote"`
	Sources []types.Entity `json:"sources"`
}

// QuestionAnalysis is one research question's slice of the report.
type QuestionAnalysis struct {
	Question types.Entity   `json:"question"`
	Findings []types.Entity `json:"findings"`
	Themes   []types.Entity `json:"themes"`
	Quotes   []types.Entity `json:"quotes"`
}

// ResearchQuestionAnalysis is the per-project research question report.
type ResearchQuestionAnalysis struct {
	Project   types.Entity       `json:"project"`
	Questions []QuestionAnalysis `json:"questions"`
}

// ChronologicalItem is one dated data source in a timeline.
type ChronologicalItem struct {
	Entity types.Entity   `json:"entity"`
	Date   time.Time      `json:"date"`
	Quotes []types.Entity `json:"quotes"`
}

// CooccurrenceCount tallies how often another code shares a quote with the
// root code.
type CooccurrenceCount struct {
	Code  types.Entity `json:"code"`
	Count int          `json:"count"`
}

// MethodologyDetails reports methodology information for a project.
type MethodologyDetails struct {
	Project       types.Entity   `json:"project"`
	Observations  []string       `json:"observations"`
	Methodologies []types.Entity `json:"methodologies"`
}

// RelationGroup groups the neighbours of an entity under one relation
// type, split by edge direction.
type RelationGroup struct {
	RelationType string         `json:"relationType"`
	Outgoing     []types.Entity `json:"outgoing"`
	Incoming     []types.Entity `json:"incoming"`
}

// DefaultChronologicalTypes are the entity types collected by
// GetChronologicalData when the caller does not restrict them.
var DefaultChronologicalTypes = []string{
	types.EntityTypeInterview,
	types.EntityTypeObservation,
	types.EntityTypeDocument,
}

// GetProjectOverview collects everything attached to a project via part_of,
// bucketed by entity type. Methodology text is extracted heuristically
// from project observations containing "method" or "approach".
func (e *Engine) GetProjectOverview(ctx context.Context, projectName string) (*ProjectOverview, error) {
	graph, project, err := e.loadRoot(ctx, projectName, types.EntityTypeProject)
	if err != nil {
		return nil, err
	}

	overview := &ProjectOverview{
		Project:           *project,
		Methodology:       filterByKeywords(project.Observations, "method", "approach"),
		ResearchQuestions: []types.Entity{},
		Participants:      []types.Entity{},
		DataSources:       []types.Entity{},
		Themes:            []types.Entity{},
		Findings:          []types.Entity{},
	}

	index := entityIndex(graph)
	for _, rel := range graph.RelationsTo(projectName, types.RelPartOf) {
		member, ok := index[rel.From]
		if !ok {
			continue
		}
		switch member.EntityType {
		case types.EntityTypeResearchQuestion:
			overview.ResearchQuestions = append(overview.ResearchQuestions, *member)
		case types.EntityTypeParticipant:
			overview.Participants = append(overview.Participants, *member)
		case types.EntityTypeInterview, types.EntityTypeObservation, types.EntityTypeDocument:
			overview.DataSources = append(overview.DataSources, *member)
		case types.EntityTypeTheme:
			overview.Themes = append(overview.Themes, *member)
		case types.EntityTypeFinding:
			overview.Findings = append(overview.Findings, *member)
		}
	}
	return overview, nil
}

// GetParticipantProfile collects a participant's data sources (outgoing
// participated_in), quotes (contains edges targeting the participant),
// memos (reflects_on edges targeting the participant), and demographic
// observations.
func (e *Engine) GetParticipantProfile(ctx context.Context, participantName string) (*ParticipantProfile, error) {
	graph, participant, err := e.loadRoot(ctx, participantName, types.EntityTypeParticipant)
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	profile := &ParticipantProfile{
		Participant:  *participant,
		Demographics: filterByKeywords(participant.Observations, "age", "gender", "occupation", "education"),
		DataSources:  []types.Entity{},
		Quotes:       []types.Entity{},
		Memos:        []types.Entity{},
	}

	for _, rel := range graph.RelationsFrom(participantName, types.RelParticipatedIn) {
		if source, ok := index[rel.To]; ok {
			profile.DataSources = append(profile.DataSources, *source)
		}
	}
	for _, rel := range graph.RelationsTo(participantName, types.RelContains) {
		if quote, ok := index[rel.From]; ok && quote.EntityType == types.EntityTypeQuote {
			profile.Quotes = append(profile.Quotes, *quote)
		}
	}
	profile.Memos = incidentByType(graph, index, participantName, types.RelReflectsOn, types.EntityTypeMemo)
	return profile, nil
}

// GetThematicAnalysis reports, for each theme under a project, its
// supporting codes with their quotes, reflecting memos, and status. The
// relation-based status subsystem is canonical; a "Status:" observation
// prefix is honoured read-only when no status edge exists.
func (e *Engine) GetThematicAnalysis(ctx context.Context, projectName string) (*ThematicAnalysis, error) {
	graph, project, err := e.loadRoot(ctx, projectName, types.EntityTypeProject)
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	analysis := &ThematicAnalysis{Project: *project, Themes: []ThemeAnalysis{}}

	for _, rel := range graph.RelationsTo(projectName, types.RelPartOf) {
		theme, ok := index[rel.From]
		if !ok || theme.EntityType != types.EntityTypeTheme {
			continue
		}

		ta := ThemeAnalysis{
			Theme:  *theme,
			Status: themeStatus(graph, theme),
			Codes:  []CodeWithQuotes{},
			Memos:  incidentByType(graph, index, theme.Name, types.RelReflectsOn, types.EntityTypeMemo),
		}
		for _, supports := range graph.RelationsTo(theme.Name, types.RelSupports) {
			code, ok := index[supports.From]
			if !ok || code.EntityType != types.EntityTypeCode {
				continue
			}
			ta.Codes = append(ta.Codes, CodeWithQuotes{
				Code:   *code,
				Quotes: quotesOfCode(graph, index, code.Name),
			})
		}
		analysis.Themes = append(analysis.Themes, ta)
	}
	return analysis, nil
}

// GetCodedData resolves a code's owning groups, tagged quotes with their
// source documents, supported themes, and reflecting memos.
func (e *Engine) GetCodedData(ctx context.Context, codeName string) (*CodedData, error) {
	graph, code, err := e.loadRoot(ctx, codeName, types.EntityTypeCode)
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	data := &CodedData{
		Code:       *code,
		CodeGroups: incidentByType(graph, index, codeName, types.RelContains, types.EntityTypeCodeGroup),
		Quotes:     []QuoteWithSources{},
		Themes:     []types.Entity{},
		Memos:      incidentByType(graph, index, codeName, types.RelReflectsOn, types.EntityTypeMemo),
	}

	for _, quote := range quotesOfCode(graph, index, codeName) {
		sources := []types.Entity{}
		for _, rel := range graph.RelationsTo(quote.Name, types.RelContains) {
			source, ok := index[rel.From]
			if !ok || source.EntityType == types.EntityTypeCode || source.EntityType == types.EntityTypeCodeGroup {
				continue
			}
			sources = append(sources, *source)
		}
		data.Quotes = append(data.Quotes, QuoteWithSources{Quote: quote, Sources: sources})
	}

	for _, rel := range graph.RelationsFrom(codeName, types.RelSupports) {
		if theme, ok := index[rel.To]; ok && theme.EntityType == types.EntityTypeTheme {
			data.Themes = append(data.Themes, *theme)
		}
	}
	return data, nil
}

// GetResearchQuestionAnalysis reports, per research question under a
// project, the findings, themes, and quotes linked to it via answers.
func (e *Engine) GetResearchQuestionAnalysis(ctx context.Context, projectName string) (*ResearchQuestionAnalysis, error) {
	graph, project, err := e.loadRoot(ctx, projectName, types.EntityTypeProject)
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	analysis := &ResearchQuestionAnalysis{Project: *project, Questions: []QuestionAnalysis{}}

	for _, rel := range graph.RelationsTo(projectName, types.RelPartOf) {
		question, ok := index[rel.From]
		if !ok || question.EntityType != types.EntityTypeResearchQuestion {
			continue
		}

		qa := QuestionAnalysis{
			Question: *question,
			Findings: []types.Entity{},
			Themes:   []types.Entity{},
			Quotes:   []types.Entity{},
		}
		for _, answers := range graph.RelationsTo(question.Name, types.RelAnswers) {
			answer, ok := index[answers.From]
			if !ok {
				continue
			}
			switch answer.EntityType {
			case types.EntityTypeFinding:
				qa.Findings = append(qa.Findings, *answer)
			case types.EntityTypeTheme:
				qa.Themes = append(qa.Themes, *answer)
			case types.EntityTypeQuote:
				qa.Quotes = append(qa.Quotes, *answer)
			}
		}
		analysis.Questions = append(analysis.Questions, qa)
	}
	return analysis, nil
}

// GetChronologicalData collects a project's data sources of the given
// types (default: interview, observation, document), orders them by the
// date encoded in their observations, and attaches each item's quotes.
// Undated and unparsable items carry the zero time and sort first.
func (e *Engine) GetChronologicalData(ctx context.Context, projectName string, entityTypes []string) ([]ChronologicalItem, error) {
	graph, _, err := e.loadRoot(ctx, projectName, types.EntityTypeProject)
	if err != nil {
		return nil, err
	}
	if len(entityTypes) == 0 {
		entityTypes = DefaultChronologicalTypes
	}
	wanted := make(map[string]bool, len(entityTypes))
	for _, et := range entityTypes {
		wanted[et] = true
	}

	index := entityIndex(graph)
	items := []ChronologicalItem{}
	for _, rel := range graph.RelationsTo(projectName, types.RelPartOf) {
		source, ok := index[rel.From]
		if !ok || !wanted[source.EntityType] {
			continue
		}
		item := ChronologicalItem{
			Entity: *source,
			Date:   observationDate(source.Observations),
			Quotes: []types.Entity{},
		}
		for _, contains := range graph.RelationsFrom(source.Name, types.RelContains) {
			if quote, ok := index[contains.To]; ok && quote.EntityType == types.EntityTypeQuote {
				item.Quotes = append(item.Quotes, *quote)
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return items, nil
}

// GetCodeCooccurrence finds, for each quote tagged by the root code, every
// other code tagging the same quote, and tallies counts per other code.
// Results are sorted descending by count; ties keep discovery order.
func (e *Engine) GetCodeCooccurrence(ctx context.Context, codeName string) ([]CooccurrenceCount, error) {
	graph, _, err := e.loadRoot(ctx, codeName, types.EntityTypeCode)
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	counts := map[string]int{}
	order := []string{}

	for _, quote := range quotesOfCode(graph, index, codeName) {
		for _, rel := range graph.RelationsTo(quote.Name, types.RelCodes) {
			if rel.From == codeName {
				continue
			}
			other, ok := index[rel.From]
			if !ok || other.EntityType != types.EntityTypeCode {
				continue
			}
			if _, seen := counts[other.Name]; !seen {
				order = append(order, other.Name)
			}
			counts[other.Name]++
		}
	}

	result := []CooccurrenceCount{}
	for _, name := range order {
		result = append(result, CooccurrenceCount{Code: *index[name], Count: counts[name]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result, nil
}

// GetMemosByFocus returns the memos whose reflects_on edge targets the
// given entity.
func (e *Engine) GetMemosByFocus(ctx context.Context, focusName string) ([]types.Entity, error) {
	graph, _, err := e.loadRoot(ctx, focusName, "")
	if err != nil {
		return nil, err
	}
	index := entityIndex(graph)
	return incidentByType(graph, index, focusName, types.RelReflectsOn, types.EntityTypeMemo), nil
}

// GetMethodologyDetails reports a project's methodology: the heuristic
// observation extraction plus any methodology entities attached via
// part_of.
func (e *Engine) GetMethodologyDetails(ctx context.Context, projectName string) (*MethodologyDetails, error) {
	graph, project, err := e.loadRoot(ctx, projectName, types.EntityTypeProject)
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	details := &MethodologyDetails{
		Project:       *project,
		Observations:  filterByKeywords(project.Observations, "method", "approach"),
		Methodologies: []types.Entity{},
	}
	for _, rel := range graph.RelationsTo(projectName, types.RelPartOf) {
		if m, ok := index[rel.From]; ok && m.EntityType == types.EntityTypeMethodology {
			details.Methodologies = append(details.Methodologies, *m)
		}
	}
	return details, nil
}

// GetRelatedEntities groups every edge incident to the entity (either
// direction) by relation type, resolving the opposite endpoint. Groups
// appear in first-encounter order over the relation list.
func (e *Engine) GetRelatedEntities(ctx context.Context, name string) ([]RelationGroup, error) {
	graph, _, err := e.loadRoot(ctx, name, "")
	if err != nil {
		return nil, err
	}

	index := entityIndex(graph)
	groups := []RelationGroup{}
	groupIdx := map[string]int{}

	group := func(relType string) *RelationGroup {
		if i, ok := groupIdx[relType]; ok {
			return &groups[i]
		}
		groups = append(groups, RelationGroup{
			RelationType: relType,
			Outgoing:     []types.Entity{},
			Incoming:     []types.Entity{},
		})
		groupIdx[relType] = len(groups) - 1
		return &groups[len(groups)-1]
	}

	for _, rel := range graph.Relations {
		switch name {
		case rel.From:
			if other, ok := index[rel.To]; ok {
				g := group(rel.RelationType)
				g.Outgoing = append(g.Outgoing, *other)
			}
		case rel.To:
			if other, ok := index[rel.From]; ok {
				g := group(rel.RelationType)
				g.Incoming = append(g.Incoming, *other)
			}
		}
	}
	return groups, nil
}

// loadRoot loads the graph and resolves a required root entity. When
// wantType is non-empty the root's entity type must match.
func (e *Engine) loadRoot(ctx context.Context, name, wantType string) (*types.KnowledgeGraph, *types.Entity, error) {
	graph, err := e.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	root := graph.FindEntity(name)
	if root == nil {
		return nil, nil, storage.NotFoundf("entity %q", name)
	}
	if wantType != "" && root.EntityType != wantType {
		return nil, nil, storage.Validationf("entity %q has type %q, want %q", name, root.EntityType, wantType)
	}
	return graph, root, nil
}

// quotesOfCode resolves the quote entities tagged by a code via codes
// edges, in relation order.
func quotesOfCode(graph *types.KnowledgeGraph, index map[string]*types.Entity, codeName string) []types.Entity {
	quotes := []types.Entity{}
	for _, rel := range graph.RelationsFrom(codeName, types.RelCodes) {
		if quote, ok := index[rel.To]; ok && quote.EntityType == types.EntityTypeQuote {
			quotes = append(quotes, *quote)
		}
	}
	return quotes
}

// incidentByType resolves the sources of edges of relType targeting name,
// filtered to the given entity type.
func incidentByType(graph *types.KnowledgeGraph, index map[string]*types.Entity, name, relType, entityType string) []types.Entity {
	out := []types.Entity{}
	for _, rel := range graph.RelationsTo(name, relType) {
		if entity, ok := index[rel.From]; ok && entity.EntityType == entityType {
			out = append(out, *entity)
		}
	}
	return out
}

// themeStatus resolves a theme's status: the relation-based has_status
// edge is canonical, with a "Status:" observation prefix honoured as
// read-only fallback for data written before the status subsystem.
func themeStatus(graph *types.KnowledgeGraph, theme *types.Entity) string {
	for _, rel := range graph.RelationsFrom(theme.Name, types.RelHasStatus) {
		if value, ok := types.StatusValueFromEntityName(rel.To); ok {
			return value
		}
	}
	if value, ok := taggedValue(theme.Observations, "Status:"); ok {
		return value
	}
	return ""
}
