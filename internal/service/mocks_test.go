package service

import (
	"context"
	"sync"
	"time"

	"github.com/mnemograph/mnemo/internal/domain"
)

// mockGraphStore is an in-memory domain.GraphStore. Query methods return
// whatever the test configured; CRUD methods record into maps.
type mockGraphStore struct {
	mu    sync.Mutex
	nodes map[string]*domain.GraphNode
	edges []domain.GraphEdge

	vectorResults []domain.ScoredNode
	vectorErr     error
	ftsByLabel    map[string][]domain.GraphNode
	ftsErr        error
	recentNodes   []domain.GraphNode
	rangeNodes    []domain.GraphNode
	entityIDs     map[string]string
	traversalHits []domain.TraversalHit
	traversalErr  error
}

func newMockGraphStore() *mockGraphStore {
	return &mockGraphStore{
		nodes:      make(map[string]*domain.GraphNode),
		ftsByLabel: make(map[string][]domain.GraphNode),
		entityIDs:  make(map[string]string),
	}
}

func (m *mockGraphStore) CreateNode(_ context.Context, n *domain.GraphNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.CreatedAt == nil {
		now := time.Now().UTC()
		n.CreatedAt = &now
		n.UpdatedAt = &now
	}
	m.nodes[n.ID] = n
	return nil
}

func (m *mockGraphStore) GetNode(_ context.Context, id string) (*domain.GraphNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[id]; ok {
		return n, nil
	}
	return nil, nil
}

func (m *mockGraphStore) CreateEdge(_ context.Context, e *domain.GraphEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, *e)
	return nil
}

func (m *mockGraphStore) VectorSearch(_ context.Context, _ string, _ []float32, _ int, _ domain.NodeFilter) ([]domain.ScoredNode, error) {
	return m.vectorResults, m.vectorErr
}

func (m *mockGraphStore) FullTextSearch(_ context.Context, label, _ string, _ int, _ domain.NodeFilter) ([]domain.GraphNode, error) {
	if m.ftsErr != nil {
		return nil, m.ftsErr
	}
	return m.ftsByLabel[label], nil
}

func (m *mockGraphStore) RecentNodes(_ context.Context, _, _ string, _ int, _ *time.Time) ([]domain.GraphNode, error) {
	return m.recentNodes, nil
}

func (m *mockGraphStore) NodesInRange(_ context.Context, _, _ string, _, _ time.Time, _ int) ([]domain.GraphNode, error) {
	return m.rangeNodes, nil
}

func (m *mockGraphStore) ResolveEntityIDs(_ context.Context, names []string) ([]string, error) {
	var ids []string
	for _, name := range names {
		if id, ok := m.entityIDs[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockGraphStore) BoundedTraversal(_ context.Context, _ []string, _, _ int, _ float64) ([]domain.TraversalHit, error) {
	return m.traversalHits, m.traversalErr
}

// mockConflictStore is an in-memory domain.ConflictStore with the same
// transition guarantee as the real one: pending edges resolve at most
// once.
type mockConflictStore struct {
	mu     sync.Mutex
	edges  map[string]*domain.ConflictEdge
	failOn error
}

func newMockConflictStore() *mockConflictStore {
	return &mockConflictStore{edges: make(map[string]*domain.ConflictEdge)}
}

func (m *mockConflictStore) Create(_ context.Context, e *domain.ConflictEdge) error {
	if m.failOn != nil {
		return m.failOn
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.edges[e.ID] = &cp
	return nil
}

func (m *mockConflictStore) Resolve(_ context.Context, conflictID string, status domain.ConflictStatus, resolvedBy string, notes *string) (bool, error) {
	if m.failOn != nil {
		return false, m.failOn
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	edge, ok := m.edges[conflictID]
	if !ok || edge.Status != domain.ConflictPending {
		return false, nil
	}
	now := time.Now().UTC()
	edge.Status = status
	edge.ResolvedBy = &resolvedBy
	edge.ResolutionDate = &now
	if notes != nil {
		edge.ResolutionNotes = notes
	}
	return true, nil
}

func (m *mockConflictStore) ListPending(_ context.Context, _ string) ([]domain.ConflictSummary, error) {
	if m.failOn != nil {
		return nil, m.failOn
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ConflictSummary
	for _, e := range m.edges {
		if e.Status == domain.ConflictPending {
			out = append(out, domain.ConflictSummary{ConflictEdge: *e})
		}
	}
	return out, nil
}

// memoryKV is a plain map KeyValueCache for cache-dependent tests.
type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (kv *memoryKV) Get(key string) ([]byte, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.data[key]
	return v, ok
}

func (kv *memoryKV) Set(key string, value []byte, _ time.Duration) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
}

// Per-path stubs for exercising the recall engine without real
// retrievers.
type stubPath struct {
	results []domain.MemoryResult
	err     error
	block   bool // hold until the context is cancelled

	mu    sync.Mutex
	calls int
}

func (s *stubPath) retrieve(ctx context.Context) ([]domain.MemoryResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.results, s.err
}

func (s *stubPath) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSemantic struct{ stubPath }

func (s *stubSemantic) Search(ctx context.Context, _ []float32, _ int, _ string) ([]domain.MemoryResult, error) {
	return s.retrieve(ctx)
}

type stubKeyword struct{ stubPath }

func (s *stubKeyword) Search(ctx context.Context, _ string, _ int, _ string) ([]domain.MemoryResult, error) {
	return s.retrieve(ctx)
}

type stubTemporal struct{ stubPath }

func (s *stubTemporal) RecentMemories(ctx context.Context, _ string, _ int) ([]domain.MemoryResult, error) {
	return s.retrieve(ctx)
}

type stubGraph struct{ stubPath }

func (s *stubGraph) RetrieveByEntities(ctx context.Context, _ []string, _ string) ([]domain.MemoryResult, error) {
	return s.retrieve(ctx)
}

func result(id string, score float64, paths ...string) domain.MemoryResult {
	return domain.MemoryResult{
		ID:         id,
		Content:    "content " + id,
		Score:      score,
		Layer:      "episodic",
		PathsFound: paths,
		Confidence: 0.9,
		Provenance: "test",
	}
}

func floatEq(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
