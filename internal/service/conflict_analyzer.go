package service

import "github.com/mnemograph/mnemo/internal/domain"

// AnalyzeConflict normalizes a raw model verification into an actionable
// analysis: severity snapped to a known level, and high or critical
// contradictions flagged for human review instead of automatic handling.
func AnalyzeConflict(v *domain.ContradictionVerification) domain.ConflictAnalysis {
	if v == nil || !v.IsContradiction {
		var reasoning string
		if v != nil {
			reasoning = v.Reasoning
		}
		return domain.ConflictAnalysis{
			IsContradiction: false,
			Reasoning:       reasoning,
		}
	}

	severity := domain.NormalizeSeverity(v.Severity)
	return domain.ConflictAnalysis{
		IsContradiction:            true,
		Severity:                   severity,
		Reasoning:                  v.Reasoning,
		ResolutionSuggestion:       v.ResolutionSuggestion,
		RequiresManualIntervention: severity == domain.SeverityHigh || severity == domain.SeverityCritical,
	}
}
