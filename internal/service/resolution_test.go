package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

func TestResolutionEngine_CreateConflict(t *testing.T) {
	store := newMockConflictStore()
	engine := NewResolutionEngine(store, zap.NewNop())

	id, err := engine.CreateConflict(context.Background(), "mem-a", "mem-b", domain.ConflictAnalysis{
		IsContradiction: true,
		Severity:        domain.SeverityHigh,
		Reasoning:       "directly opposing claims",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(id, "conf_") {
		t.Errorf("expected conf_ prefixed id, got %s", id)
	}

	edge := store.edges[id]
	if edge == nil {
		t.Fatal("edge not persisted")
	}
	if edge.Status != domain.ConflictPending {
		t.Errorf("new conflicts must start pending, got %s", edge.Status)
	}
	if !floatEq(edge.Weight, 1.0) {
		t.Errorf("conflict weight must be fixed at 1.0, got %f", edge.Weight)
	}
	if edge.ResolutionNotes == nil || *edge.ResolutionNotes != "directly opposing claims" {
		t.Error("reasoning not recorded as notes")
	}
}

func TestResolutionEngine_ResolveOnce(t *testing.T) {
	store := newMockConflictStore()
	engine := NewResolutionEngine(store, zap.NewNop())

	id, err := engine.CreateConflict(context.Background(), "mem-a", "mem-b", domain.ConflictAnalysis{
		IsContradiction: true,
		Severity:        domain.SeverityMedium,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := engine.ResolveConflict(context.Background(), id, domain.ConflictResolved, "reviewer-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolved {
		t.Fatal("first resolution must succeed")
	}

	// Second attempt loses: the transition already happened.
	resolved, err = engine.ResolveConflict(context.Background(), id, domain.ConflictOverridden, "reviewer-2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved {
		t.Fatal("second resolution must report false")
	}
	if store.edges[id].Status != domain.ConflictResolved {
		t.Errorf("terminal status overwritten to %s", store.edges[id].Status)
	}
}

func TestResolutionEngine_RejectsNonTerminalStatus(t *testing.T) {
	engine := NewResolutionEngine(newMockConflictStore(), zap.NewNop())

	for _, status := range []domain.ConflictStatus{domain.ConflictPending, "deleted", ""} {
		_, err := engine.ResolveConflict(context.Background(), "conf_x", status, "reviewer", nil)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("status %q: expected ErrInvalidStatus, got %v", status, err)
		}
	}
}

func TestResolutionEngine_StoreFailureDegrades(t *testing.T) {
	store := newMockConflictStore()
	store.failOn = errors.New("connection reset")
	engine := NewResolutionEngine(store, zap.NewNop())

	resolved, err := engine.ResolveConflict(context.Background(), "conf_x", domain.ConflictResolved, "reviewer", nil)
	if err != nil || resolved {
		t.Fatalf("store failure should degrade to (false, nil), got (%v, %v)", resolved, err)
	}

	if got := engine.GetPendingConflicts(context.Background(), "agent-1"); got != nil {
		t.Fatalf("listing failure should degrade to empty, got %v", got)
	}
}

func TestResolutionEngine_ListPending(t *testing.T) {
	store := newMockConflictStore()
	engine := NewResolutionEngine(store, zap.NewNop())

	id1, _ := engine.CreateConflict(context.Background(), "a", "b", domain.ConflictAnalysis{IsContradiction: true, Severity: domain.SeverityLow})
	id2, _ := engine.CreateConflict(context.Background(), "c", "d", domain.ConflictAnalysis{IsContradiction: true, Severity: domain.SeverityHigh})
	if _, err := engine.ResolveConflict(context.Background(), id1, domain.ConflictOverridden, "reviewer", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := engine.GetPendingConflicts(context.Background(), "")
	if len(pending) != 1 || pending[0].ID != id2 {
		t.Fatalf("expected only the unresolved conflict, got %v", pending)
	}
}
