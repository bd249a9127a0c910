// Package types defines the core data structures for the QualGraph
// knowledge graph: entities, relations, observations, and the closed
// enumerations that validate them.
package types

// Entity type constants covering the qualitative-research domain.
const (
	// Study structure
	EntityTypeProject          = "project"
	EntityTypeResearchQuestion = "researchQuestion"
	EntityTypeMethodology      = "methodology"

	// People and data sources
	EntityTypeParticipant = "participant"
	EntityTypeInterview   = "interview"
	EntityTypeObservation = "observation"
	EntityTypeDocument    = "document"

	// Analysis artifacts
	EntityTypeQuote     = "quote"
	EntityTypeCode      = "code"
	EntityTypeCodeGroup = "codeGroup"
	EntityTypeTheme     = "theme"
	EntityTypeFinding   = "finding"
	EntityTypeMemo      = "memo"

	// Reserved types backing the status/priority subsystem
	EntityTypeStatus   = "status"
	EntityTypePriority = "priority"
)

// ValidEntityTypes is a slice of all valid entity types for validation.
var ValidEntityTypes = []string{
	EntityTypeProject,
	EntityTypeResearchQuestion,
	EntityTypeMethodology,
	EntityTypeParticipant,
	EntityTypeInterview,
	EntityTypeObservation,
	EntityTypeDocument,
	EntityTypeQuote,
	EntityTypeCode,
	EntityTypeCodeGroup,
	EntityTypeTheme,
	EntityTypeFinding,
	EntityTypeMemo,
	EntityTypeStatus,
	EntityTypePriority,
}

// Relation type constants.
const (
	// Structural relations
	RelPartOf         = "part_of"         // artifact belongs to a project
	RelParticipatedIn = "participated_in" // participant took part in a data source
	RelContains       = "contains"        // document/interview contains a quote; codeGroup contains a code

	// Analysis relations
	RelCodes            = "codes"             // code is applied to a quote
	RelSupports         = "supports"          // code/finding supports a theme
	RelReflectsOn       = "reflects_on"       // memo reflects on another entity
	RelAnswers          = "answers"           // finding/theme/quote answers a research question
	RelPrecedes         = "precedes"          // temporal ordering between data sources
	RelTriangulatesWith = "triangulates_with" // independent sources corroborate each other
	RelContradicts      = "contradicts"       // sources or findings in tension

	// Generic relation
	RelRelatedTo = "related_to"

	// Side-table relations backing the status/priority subsystem
	RelHasStatus   = "has_status"
	RelHasPriority = "has_priority"
)

// ValidRelationTypes is a slice of all valid relation types for validation.
var ValidRelationTypes = []string{
	RelPartOf,
	RelParticipatedIn,
	RelContains,
	RelCodes,
	RelSupports,
	RelReflectsOn,
	RelAnswers,
	RelPrecedes,
	RelTriangulatesWith,
	RelContradicts,
	RelRelatedTo,
	RelHasStatus,
	RelHasPriority,
}

// Status value constants for the relation-based status subsystem.
const (
	StatusDraft       = "draft"
	StatusInProgress  = "in_progress"
	StatusUnderReview = "under_review"
	StatusFinal       = "final"
	StatusArchived    = "archived"
)

// ValidStatusValues is a slice of all valid status values for validation.
var ValidStatusValues = []string{
	StatusDraft,
	StatusInProgress,
	StatusUnderReview,
	StatusFinal,
	StatusArchived,
}

// Priority value constants for the relation-based priority subsystem.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ValidPriorityValues is a slice of all valid priority values for validation.
var ValidPriorityValues = []string{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// IsValidEntityType checks if the given entity type is valid.
func IsValidEntityType(entityType string) bool {
	for _, validType := range ValidEntityTypes {
		if validType == entityType {
			return true
		}
	}
	return false
}

// IsValidRelationType checks if the given relation type is valid.
func IsValidRelationType(relationType string) bool {
	for _, validType := range ValidRelationTypes {
		if validType == relationType {
			return true
		}
	}
	return false
}

// IsValidStatusValue checks if the given status value is valid.
func IsValidStatusValue(value string) bool {
	for _, valid := range ValidStatusValues {
		if valid == value {
			return true
		}
	}
	return false
}

// IsValidPriorityValue checks if the given priority value is valid.
func IsValidPriorityValue(value string) bool {
	for _, valid := range ValidPriorityValues {
		if valid == value {
			return true
		}
	}
	return false
}
