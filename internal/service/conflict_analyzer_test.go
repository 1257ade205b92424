package service

import (
	"testing"

	"github.com/mnemograph/mnemo/internal/domain"
)

func TestAnalyzeConflict_NonContradictionPassesThrough(t *testing.T) {
	analysis := AnalyzeConflict(&domain.ContradictionVerification{
		IsContradiction: false,
		Reasoning:       "different time periods",
	})
	if analysis.IsContradiction {
		t.Fatal("non-contradiction must stay a non-contradiction")
	}
	if analysis.Reasoning != "different time periods" {
		t.Errorf("reasoning lost: %q", analysis.Reasoning)
	}
	if analysis.RequiresManualIntervention {
		t.Error("non-contradiction must not require intervention")
	}
}

func TestAnalyzeConflict_NormalizesSeverity(t *testing.T) {
	cases := map[string]domain.Severity{
		"low":      domain.SeverityLow,
		"medium":   domain.SeverityMedium,
		"high":     domain.SeverityHigh,
		"critical": domain.SeverityCritical,
		"SEVERE":   domain.SeverityMedium, // unknown defaults to medium
		"":         domain.SeverityMedium,
	}
	for raw, want := range cases {
		analysis := AnalyzeConflict(&domain.ContradictionVerification{
			IsContradiction: true,
			Severity:        raw,
		})
		if analysis.Severity != want {
			t.Errorf("severity %q: expected %s, got %s", raw, want, analysis.Severity)
		}
	}
}

func TestAnalyzeConflict_ManualInterventionThreshold(t *testing.T) {
	cases := map[domain.Severity]bool{
		domain.SeverityLow:      false,
		domain.SeverityMedium:   false,
		domain.SeverityHigh:     true,
		domain.SeverityCritical: true,
	}
	for severity, want := range cases {
		analysis := AnalyzeConflict(&domain.ContradictionVerification{
			IsContradiction: true,
			Severity:        string(severity),
		})
		if analysis.RequiresManualIntervention != want {
			t.Errorf("severity %s: expected manual intervention %v", severity, want)
		}
	}
}

func TestAnalyzeConflict_NilVerification(t *testing.T) {
	analysis := AnalyzeConflict(nil)
	if analysis.IsContradiction {
		t.Fatal("nil verification must not be a contradiction")
	}
}
