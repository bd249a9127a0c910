package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qualgraph/qualgraph/internal/storage"
	"github.com/qualgraph/qualgraph/pkg/types"
)

// seedStudy builds a small but complete research project used by the view
// tests: one project with a question, a participant, three interviews
// (two dated, one not), a coded quote, a theme, a finding, and memos.
func seedStudy(t *testing.T) *Engine {
	t.Helper()
	e, _ := newTestEngine(t)

	mustCreateEntities(t, e,
		types.Entity{Name: "Study", EntityType: types.EntityTypeProject, Observations: []string{
			"Mixed methods approach with weekly interviews",
			"Recruitment closed in March",
		}},
		types.Entity{Name: "RQ1", EntityType: types.EntityTypeResearchQuestion},
		types.Entity{Name: "P1", EntityType: types.EntityTypeParticipant, Observations: []string{
			"age 34",
			"occupation: nurse",
			"prefers morning sessions",
		}},
		types.Entity{Name: "Interview 1", EntityType: types.EntityTypeInterview, Observations: []string{"Date: 2024-01-05"}},
		types.Entity{Name: "Interview 2", EntityType: types.EntityTypeInterview, Observations: []string{"Date: 2024-01-01"}},
		types.Entity{Name: "Interview 3", EntityType: types.EntityTypeInterview, Observations: []string{"no date recorded"}},
		types.Entity{Name: "Q1", EntityType: types.EntityTypeQuote, Observations: []string{"\"it never stops\""}},
		types.Entity{Name: "C1", EntityType: types.EntityTypeCode},
		types.Entity{Name: "C2", EntityType: types.EntityTypeCode},
		types.Entity{Name: "CG1", EntityType: types.EntityTypeCodeGroup},
		types.Entity{Name: "T1", EntityType: types.EntityTypeTheme, Observations: []string{"Status: emerging"}},
		types.Entity{Name: "F1", EntityType: types.EntityTypeFinding},
		types.Entity{Name: "M1", EntityType: types.EntityTypeMemo},
		types.Entity{Name: "M2", EntityType: types.EntityTypeMemo},
		types.Entity{Name: "GT", EntityType: types.EntityTypeMethodology},
	)
	mustCreateRelations(t, e,
		types.Relation{From: "RQ1", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "P1", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "Interview 1", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "Interview 2", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "Interview 3", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "T1", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "F1", To: "Study", RelationType: types.RelPartOf},
		types.Relation{From: "GT", To: "Study", RelationType: types.RelPartOf},

		types.Relation{From: "P1", To: "Interview 1", RelationType: types.RelParticipatedIn},
		types.Relation{From: "Interview 1", To: "Q1", RelationType: types.RelContains},
		types.Relation{From: "Q1", To: "P1", RelationType: types.RelContains},
		types.Relation{From: "CG1", To: "C1", RelationType: types.RelContains},

		types.Relation{From: "C1", To: "Q1", RelationType: types.RelCodes},
		types.Relation{From: "C2", To: "Q1", RelationType: types.RelCodes},
		types.Relation{From: "C1", To: "T1", RelationType: types.RelSupports},

		types.Relation{From: "M1", To: "T1", RelationType: types.RelReflectsOn},
		types.Relation{From: "M2", To: "P1", RelationType: types.RelReflectsOn},

		types.Relation{From: "F1", To: "RQ1", RelationType: types.RelAnswers},
		types.Relation{From: "T1", To: "RQ1", RelationType: types.RelAnswers},
		types.Relation{From: "Q1", To: "RQ1", RelationType: types.RelAnswers},
	)
	return e
}

func entityNames(entities []types.Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}

func TestGetProjectOverview(t *testing.T) {
	e := seedStudy(t)

	overview, err := e.GetProjectOverview(context.Background(), "Study")
	if err != nil {
		t.Fatal(err)
	}

	if len(overview.ResearchQuestions) != 1 || overview.ResearchQuestions[0].Name != "RQ1" {
		t.Errorf("research questions = %v", entityNames(overview.ResearchQuestions))
	}
	if len(overview.Participants) != 1 || overview.Participants[0].Name != "P1" {
		t.Errorf("participants = %v", entityNames(overview.Participants))
	}
	if len(overview.DataSources) != 3 {
		t.Errorf("data sources = %v", entityNames(overview.DataSources))
	}
	if len(overview.Themes) != 1 || len(overview.Findings) != 1 {
		t.Errorf("themes = %v, findings = %v", entityNames(overview.Themes), entityNames(overview.Findings))
	}
	if len(overview.Methodology) != 1 || overview.Methodology[0] != "Mixed methods approach with weekly interviews" {
		t.Errorf("methodology = %v", overview.Methodology)
	}
}

func TestGetProjectOverviewRootErrors(t *testing.T) {
	e := seedStudy(t)
	ctx := context.Background()

	if _, err := e.GetProjectOverview(ctx, "Ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing root: got %v", err)
	}
	if _, err := e.GetProjectOverview(ctx, "P1"); !errors.Is(err, storage.ErrValidation) {
		t.Errorf("wrong root type: got %v", err)
	}
}

func TestGetParticipantProfile(t *testing.T) {
	e := seedStudy(t)

	profile, err := e.GetParticipantProfile(context.Background(), "P1")
	if err != nil {
		t.Fatal(err)
	}

	if got := entityNames(profile.DataSources); len(got) != 1 || got[0] != "Interview 1" {
		t.Errorf("data sources = %v", got)
	}
	if got := entityNames(profile.Quotes); len(got) != 1 || got[0] != "Q1" {
		t.Errorf("quotes = %v", got)
	}
	if got := entityNames(profile.Memos); len(got) != 1 || got[0] != "M2" {
		t.Errorf("memos = %v", got)
	}
	if len(profile.Demographics) != 2 {
		t.Errorf("demographics = %v, want the age and occupation lines", profile.Demographics)
	}
}

func TestGetThematicAnalysis(t *testing.T) {
	e := seedStudy(t)
	ctx := context.Background()

	analysis, err := e.GetThematicAnalysis(ctx, "Study")
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Themes) != 1 {
		t.Fatalf("themes = %d", len(analysis.Themes))
	}

	theme := analysis.Themes[0]
	if theme.Theme.Name != "T1" {
		t.Errorf("theme = %q", theme.Theme.Name)
	}
	// No status edge yet: the legacy "Status:" observation is honoured.
	if theme.Status != "emerging" {
		t.Errorf("status = %q, want observation fallback %q", theme.Status, "emerging")
	}
	if len(theme.Codes) != 1 || theme.Codes[0].Code.Name != "C1" {
		t.Fatalf("codes = %+v", theme.Codes)
	}
	if got := entityNames(theme.Codes[0].Quotes); len(got) != 1 || got[0] != "Q1" {
		t.Errorf("code quotes = %v", got)
	}
	if got := entityNames(theme.Memos); len(got) != 1 || got[0] != "M1" {
		t.Errorf("memos = %v", got)
	}

	// A status edge takes precedence over the observation.
	if err := e.SetEntityStatus(ctx, "T1", types.StatusFinal); err != nil {
		t.Fatal(err)
	}
	analysis, err = e.GetThematicAnalysis(ctx, "Study")
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Themes[0].Status != "final" {
		t.Errorf("status = %q, relation-based value is canonical", analysis.Themes[0].Status)
	}
}

func TestGetCodedData(t *testing.T) {
	e := seedStudy(t)

	data, err := e.GetCodedData(context.Background(), "C1")
	if err != nil {
		t.Fatal(err)
	}

	if got := entityNames(data.CodeGroups); len(got) != 1 || got[0] != "CG1" {
		t.Errorf("code groups = %v", got)
	}
	if len(data.Quotes) != 1 || data.Quotes[0].Quote.Name != "Q1" {
		t.Fatalf("quotes = %+v", data.Quotes)
	}
	if got := entityNames(data.Quotes[0].Sources); len(got) != 1 || got[0] != "Interview 1" {
		t.Errorf("quote sources = %v", got)
	}
	if got := entityNames(data.Themes); len(got) != 1 || got[0] != "T1" {
		t.Errorf("themes = %v", got)
	}
	if len(data.Memos) != 0 {
		t.Errorf("memos = %v, want empty (never nil error)", entityNames(data.Memos))
	}
}

func TestGetResearchQuestionAnalysis(t *testing.T) {
	e := seedStudy(t)

	analysis, err := e.GetResearchQuestionAnalysis(context.Background(), "Study")
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Questions) != 1 {
		t.Fatalf("questions = %d", len(analysis.Questions))
	}

	qa := analysis.Questions[0]
	if qa.Question.Name != "RQ1" {
		t.Errorf("question = %q", qa.Question.Name)
	}
	if got := entityNames(qa.Findings); len(got) != 1 || got[0] != "F1" {
		t.Errorf("findings = %v", got)
	}
	if got := entityNames(qa.Themes); len(got) != 1 || got[0] != "T1" {
		t.Errorf("themes = %v", got)
	}
	if got := entityNames(qa.Quotes); len(got) != 1 || got[0] != "Q1" {
		t.Errorf("quotes = %v", got)
	}
}

func TestGetChronologicalDataOrdering(t *testing.T) {
	e := seedStudy(t)

	items, err := e.GetChronologicalData(context.Background(), "Study", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d", len(items))
	}

	// Undated first (zero time), then ascending.
	want := []string{"Interview 3", "Interview 2", "Interview 1"}
	for i, w := range want {
		if items[i].Entity.Name != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Entity.Name, w)
		}
	}
	if !items[0].Date.IsZero() {
		t.Errorf("undated item should carry the zero time, got %v", items[0].Date)
	}
	if items[2].Date != time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) {
		t.Errorf("items[2].Date = %v", items[2].Date)
	}
	if got := entityNames(items[2].Quotes); len(got) != 1 || got[0] != "Q1" {
		t.Errorf("Interview 1 quotes = %v", got)
	}
}

func TestGetChronologicalDataTypeFilter(t *testing.T) {
	e := seedStudy(t)

	items, err := e.GetChronologicalData(context.Background(), "Study", []string{types.EntityTypeDocument})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("no documents in the study, got %d items", len(items))
	}
}

func TestGetCodeCooccurrenceSymmetry(t *testing.T) {
	e := seedStudy(t)
	ctx := context.Background()

	forC1, err := e.GetCodeCooccurrence(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}
	if len(forC1) != 1 || forC1[0].Code.Name != "C2" || forC1[0].Count != 1 {
		t.Errorf("cooccurrence(C1) = %+v", forC1)
	}

	forC2, err := e.GetCodeCooccurrence(ctx, "C2")
	if err != nil {
		t.Fatal(err)
	}
	if len(forC2) != 1 || forC2[0].Code.Name != "C1" || forC2[0].Count != 1 {
		t.Errorf("cooccurrence(C2) = %+v", forC2)
	}
}

func TestGetCodeCooccurrenceCountsAndOrder(t *testing.T) {
	e := seedStudy(t)
	ctx := context.Background()

	// Add a second shared quote so C2 co-occurs twice, and a third code
	// sharing only one quote.
	mustCreateEntities(t, e,
		types.Entity{Name: "Q2", EntityType: types.EntityTypeQuote},
		types.Entity{Name: "C3", EntityType: types.EntityTypeCode},
	)
	mustCreateRelations(t, e,
		types.Relation{From: "C1", To: "Q2", RelationType: types.RelCodes},
		types.Relation{From: "C2", To: "Q2", RelationType: types.RelCodes},
		types.Relation{From: "C3", To: "Q2", RelationType: types.RelCodes},
	)

	counts, err := e.GetCodeCooccurrence(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts[0].Code.Name != "C2" || counts[0].Count != 2 {
		t.Errorf("counts[0] = %+v, want C2 with 2", counts[0])
	}
	if counts[1].Code.Name != "C3" || counts[1].Count != 1 {
		t.Errorf("counts[1] = %+v, want C3 with 1", counts[1])
	}
}

func TestGetMemosByFocus(t *testing.T) {
	e := seedStudy(t)
	ctx := context.Background()

	memos, err := e.GetMemosByFocus(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if got := entityNames(memos); len(got) != 1 || got[0] != "M1" {
		t.Errorf("memos = %v", got)
	}

	if _, err := e.GetMemosByFocus(ctx, "Ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing focus: got %v", err)
	}
}

func TestGetMethodologyDetails(t *testing.T) {
	e := seedStudy(t)

	details, err := e.GetMethodologyDetails(context.Background(), "Study")
	if err != nil {
		t.Fatal(err)
	}
	if len(details.Observations) != 1 {
		t.Errorf("observations = %v", details.Observations)
	}
	if got := entityNames(details.Methodologies); len(got) != 1 || got[0] != "GT" {
		t.Errorf("methodologies = %v", got)
	}
}

func TestGetRelatedEntities(t *testing.T) {
	e := seedStudy(t)

	groups, err := e.GetRelatedEntities(context.Background(), "Q1")
	if err != nil {
		t.Fatal(err)
	}

	byType := map[string]RelationGroup{}
	for _, g := range groups {
		byType[g.RelationType] = g
	}

	contains := byType[types.RelContains]
	if got := entityNames(contains.Incoming); len(got) != 1 || got[0] != "Interview 1" {
		t.Errorf("contains incoming = %v", got)
	}
	if got := entityNames(contains.Outgoing); len(got) != 1 || got[0] != "P1" {
		t.Errorf("contains outgoing = %v", got)
	}

	codes := byType[types.RelCodes]
	if got := entityNames(codes.Incoming); len(got) != 2 {
		t.Errorf("codes incoming = %v", got)
	}

	answers := byType[types.RelAnswers]
	if got := entityNames(answers.Outgoing); len(got) != 1 || got[0] != "RQ1" {
		t.Errorf("answers outgoing = %v", got)
	}
}
