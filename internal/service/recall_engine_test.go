package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

func newTestEngine(sem *stubSemantic, kw *stubKeyword, temp *stubTemporal, gr *stubGraph) *RecallEngine {
	return &RecallEngine{
		semantic: sem,
		keyword:  kw,
		temporal: temp,
		graph:    gr,
		logger:   zap.NewNop(),
	}
}

func TestRecallEngine_MergesDuplicatesByMaxScore(t *testing.T) {
	sem := &stubSemantic{stubPath{results: []domain.MemoryResult{
		result("mem1", 0.9, "semantic"),
		result("mem2", 0.5, "semantic"),
	}}}
	kw := &stubKeyword{stubPath{results: []domain.MemoryResult{
		result("mem1", 0.6, "keyword"),
	}}}
	temp := &stubTemporal{}
	gr := &stubGraph{}

	engine := newTestEngine(sem, kw, temp, gr)
	merged := engine.Recall(context.Background(), RecallRequest{Query: "q", AgentID: "agent-1"})

	if len(merged) != 2 {
		t.Fatalf("expected 2 unique results, got %d", len(merged))
	}

	// mem1 keeps the higher semantic score but carries both paths.
	if merged[0].ID != "mem1" {
		t.Fatalf("expected mem1 first, got %s", merged[0].ID)
	}
	if !floatEq(merged[0].Score, 0.9) {
		t.Errorf("expected max score 0.9, got %f", merged[0].Score)
	}
	if len(merged[0].PathsFound) != 2 {
		t.Errorf("expected paths from both retrievers, got %v", merged[0].PathsFound)
	}
}

func TestRecallEngine_LowerScoredDuplicateStillUnionsPaths(t *testing.T) {
	sem := &stubSemantic{stubPath{results: []domain.MemoryResult{
		result("mem1", 0.3, "semantic"),
	}}}
	kw := &stubKeyword{stubPath{results: []domain.MemoryResult{
		result("mem1", 0.8, "keyword"),
	}}}

	engine := newTestEngine(sem, kw, &stubTemporal{}, &stubGraph{})
	merged := engine.Recall(context.Background(), RecallRequest{Query: "q", AgentID: "agent-1"})

	if len(merged) != 1 {
		t.Fatalf("expected 1 result, got %d", len(merged))
	}
	if !floatEq(merged[0].Score, 0.8) {
		t.Errorf("expected higher score 0.8 to win, got %f", merged[0].Score)
	}
	want := map[string]bool{"semantic": true, "keyword": true}
	for _, p := range merged[0].PathsFound {
		delete(want, p)
	}
	if len(want) != 0 {
		t.Errorf("missing paths %v in %v", want, merged[0].PathsFound)
	}
}

func TestRecallEngine_FailedPathIsIsolated(t *testing.T) {
	sem := &stubSemantic{stubPath{err: errors.New("vector index down")}}
	kw := &stubKeyword{stubPath{results: []domain.MemoryResult{
		result("mem1", 0.7, "keyword"),
	}}}
	temp := &stubTemporal{stubPath{results: []domain.MemoryResult{
		result("mem2", 1.0, "temporal"),
	}}}

	engine := newTestEngine(sem, kw, temp, &stubGraph{})
	merged := engine.Recall(context.Background(), RecallRequest{Query: "q", AgentID: "agent-1"})

	if len(merged) != 2 {
		t.Fatalf("expected surviving paths to contribute 2 results, got %d", len(merged))
	}
}

func TestRecallEngine_GraphPathOnlyRunsWithEntities(t *testing.T) {
	gr := &stubGraph{stubPath{results: []domain.MemoryResult{
		result("mem3", 0.4, "Entity -> MENTIONS"),
	}}}
	engine := newTestEngine(&stubSemantic{}, &stubKeyword{}, &stubTemporal{}, gr)

	engine.Recall(context.Background(), RecallRequest{Query: "q", AgentID: "agent-1"})
	if gr.callCount() != 0 {
		t.Fatalf("graph path ran without entity names")
	}

	merged := engine.Recall(context.Background(), RecallRequest{
		Query:       "q",
		AgentID:     "agent-1",
		EntityNames: []string{"PostgreSQL"},
	})
	if gr.callCount() != 1 {
		t.Fatalf("graph path did not run with entity names")
	}
	if len(merged) != 1 || merged[0].ID != "mem3" {
		t.Fatalf("expected graph result, got %v", merged)
	}
}

func TestRecallEngine_TimeoutReturnsNothing(t *testing.T) {
	// Every path blocks until cancelled; the recall must come back empty
	// shortly after the deadline instead of returning partial results.
	sem := &stubSemantic{stubPath{block: true}}
	kw := &stubKeyword{stubPath{results: []domain.MemoryResult{
		result("mem1", 0.9, "keyword"),
	}}}

	engine := newTestEngine(sem, kw, &stubTemporal{}, &stubGraph{})

	start := time.Now()
	merged := engine.Recall(context.Background(), RecallRequest{
		Query:   "q",
		AgentID: "agent-1",
		Timeout: 50 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if merged != nil {
		t.Fatalf("expected empty result on timeout, got %d results", len(merged))
	}
	if elapsed > time.Second {
		t.Fatalf("recall did not respect the deadline, took %v", elapsed)
	}
}

func TestRecallEngine_PanickingPathIsIsolated(t *testing.T) {
	engine := newTestEngine(&stubSemantic{}, &stubKeyword{}, &stubTemporal{}, &stubGraph{})
	engine.semantic = panicSearcher{}

	merged := engine.Recall(context.Background(), RecallRequest{Query: "q", AgentID: "agent-1"})
	if merged != nil {
		t.Fatalf("expected no results, got %v", merged)
	}
}

type panicSearcher struct{}

func (panicSearcher) Search(context.Context, []float32, int, string) ([]domain.MemoryResult, error) {
	panic("index corrupted")
}
