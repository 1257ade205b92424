package domain

import "time"

// ConflictStatus is the lifecycle state of a CONFLICTS_WITH edge.
// An edge starts pending and transitions exactly once to a terminal
// state; terminal edges are never mutated again and never deleted.
type ConflictStatus string

const (
	ConflictPending    ConflictStatus = "pending"
	ConflictResolved   ConflictStatus = "resolved"
	ConflictOverridden ConflictStatus = "overridden"
)

// TerminalConflictStatus reports whether s is a valid terminal state.
func TerminalConflictStatus(s ConflictStatus) bool {
	return s == ConflictResolved || s == ConflictOverridden
}

// Severity classifies how serious a verified contradiction is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NormalizeSeverity maps free-form model output to a known severity,
// defaulting to medium on anything unparseable.
func NormalizeSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s)
	}
	return SeverityMedium
}

// Rank orders severities for listing; lower is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// ConflictEdge is a directed CONFLICTS_WITH relationship between two
// memory records. Weight is fixed at 1.0 on creation; severity is
// advisory metadata used to order pending listings.
type ConflictEdge struct {
	ID              string         `json:"id"`
	SourceID        string         `json:"source_id"`
	TargetID        string         `json:"target_id"`
	Status          ConflictStatus `json:"status"`
	Severity        Severity       `json:"severity"`
	Weight          float64        `json:"weight"`
	ResolvedBy      *string        `json:"resolved_by,omitempty"`
	ResolutionDate  *time.Time     `json:"resolution_date,omitempty"`
	ResolutionNotes *string        `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ConflictSummary is a pending conflict with both endpoints' content,
// as surfaced for human review.
type ConflictSummary struct {
	ConflictEdge
	SourceContent string `json:"source_content"`
	TargetContent string `json:"target_content"`
}

// ContradictionVerification is the structured judgment returned by the
// language model for a candidate pair.
type ContradictionVerification struct {
	IsContradiction      bool   `json:"is_contradiction"`
	Reasoning            string `json:"reasoning"`
	Severity             string `json:"severity,omitempty"`
	ResolutionSuggestion string `json:"resolution_suggestion,omitempty"`
}

// ConflictAnalysis is a verification with severity normalized and the
// manual-intervention requirement derived.
type ConflictAnalysis struct {
	IsContradiction            bool     `json:"is_contradiction"`
	Severity                   Severity `json:"severity"`
	Reasoning                  string   `json:"reasoning"`
	ResolutionSuggestion       string   `json:"resolution_suggestion"`
	RequiresManualIntervention bool     `json:"requires_manual_intervention"`
}
