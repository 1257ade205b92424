package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/llm"
)

func newTestContradictService(graph *mockGraphStore, client *llm.MockClient) (*ContradictService, *mockConflictStore) {
	conflicts := newMockConflictStore()
	svc := NewContradictService(
		NewContradictionDetector(graph, client, zap.NewNop()),
		NewResolutionEngine(conflicts, zap.NewNop()),
		zap.NewNop(),
		nil,
	)
	return svc, conflicts
}

func TestContradictService_CreatesConflictForVerifiedContradiction(t *testing.T) {
	graph := newMockGraphStore()
	graph.vectorResults = []domain.ScoredNode{
		{Node: domain.GraphNode{ID: "existing", Content: "the service runs on port 8080"}, Similarity: 0.9},
	}

	client := llm.NewMockClient()
	client.VerifyContradictionResponse = &domain.ContradictionVerification{
		IsContradiction: true,
		Reasoning:       "ports disagree",
		Severity:        "medium",
	}

	svc, conflicts := newTestContradictService(graph, client)
	record := &domain.GraphNode{
		ID:        "new",
		AgentID:   "agent-1",
		Content:   "the service runs on port 9090",
		Embedding: []float32{0.1, 0.2},
	}

	created, err := svc.Execute(context.Background(), record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(created))
	}
	if created[0].TargetID != "existing" || created[0].Severity != domain.SeverityMedium {
		t.Errorf("unexpected conflict record: %+v", created[0])
	}

	edge, ok := conflicts.edges[created[0].ConflictID]
	if !ok {
		t.Fatal("conflict edge not persisted")
	}
	if edge.SourceID != "new" || edge.TargetID != "existing" {
		t.Errorf("edge endpoints wrong: %+v", edge)
	}
}

func TestContradictService_UnverifiedCandidatesCreateNothing(t *testing.T) {
	graph := newMockGraphStore()
	graph.vectorResults = []domain.ScoredNode{
		{Node: domain.GraphNode{ID: "existing", Content: "similar but compatible"}, Similarity: 0.8},
	}

	// Default mock verdict is not-a-contradiction.
	svc, conflicts := newTestContradictService(graph, llm.NewMockClient())
	record := &domain.GraphNode{ID: "new", AgentID: "agent-1", Content: "text", Embedding: []float32{0.1}}

	created, err := svc.Execute(context.Background(), record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(created))
	}
	if len(conflicts.edges) != 0 {
		t.Fatal("conflict edge persisted for an unverified pair")
	}
}

func TestContradictService_NoCandidatesSkipsModel(t *testing.T) {
	client := llm.NewMockClient()
	svc, _ := newTestContradictService(newMockGraphStore(), client)
	record := &domain.GraphNode{ID: "new", AgentID: "agent-1", Content: "text", Embedding: []float32{0.1}}

	if _, err := svc.Execute(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.VerifyContradictionCalls) != 0 {
		t.Fatal("model called despite no candidates")
	}
}
