package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

var (
	ErrEmptyContent = errors.New("content is required")
	ErrEmptyAgentID = errors.New("agent_id is required")
)

// RememberParams is one memory to store.
type RememberParams struct {
	Content    string
	AgentID    string
	MemoryType string
	SessionID  string
	Confidence float64
	Importance float64
}

// MemoryService handles the write path: validating and storing new
// memories, then handing enrichment (entity linking and contradiction
// detection) to the background queue so ingest latency stays bounded by
// one embedding call and one insert.
type MemoryService struct {
	graph      domain.GraphStore
	embedder   domain.EmbeddingClient
	llm        domain.LLMClient
	contradict *ContradictService
	queue      *TaskQueue
	logger     *zap.Logger
}

func NewMemoryService(
	graph domain.GraphStore,
	embedder domain.EmbeddingClient,
	llm domain.LLMClient,
	contradict *ContradictService,
	queue *TaskQueue,
	logger *zap.Logger,
) *MemoryService {
	return &MemoryService{
		graph:      graph,
		embedder:   embedder,
		llm:        llm,
		contradict: contradict,
		queue:      queue,
		logger:     logger,
	}
}

// Remember validates and stores a memory, returning the created node.
// Embedding failure is non-fatal: the memory is stored without a vector
// and simply never surfaces on the semantic path.
func (s *MemoryService) Remember(ctx context.Context, params RememberParams) (*domain.GraphNode, error) {
	if params.Content == "" {
		return nil, ErrEmptyContent
	}
	if params.AgentID == "" {
		return nil, ErrEmptyAgentID
	}
	if params.MemoryType == "" {
		params.MemoryType = "episodic"
	}
	if params.Confidence <= 0 {
		params.Confidence = 1.0
	}

	var embedding []float32
	if s.embedder != nil {
		var err error
		embedding, err = s.embedder.Embed(ctx, params.Content)
		if err != nil {
			s.logger.Warn("embedding failed, storing memory without vector", zap.Error(err))
			embedding = nil
		}
	}

	now := time.Now().UTC()
	node := &domain.GraphNode{
		ID:         uuid.NewString(),
		Label:      domain.LabelExperience,
		Content:    params.Content,
		AgentID:    params.AgentID,
		MemoryType: params.MemoryType,
		SessionID:  params.SessionID,
		Confidence: params.Confidence,
		Importance: params.Importance,
		Embedding:  embedding,
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}
	if err := s.graph.CreateNode(ctx, node); err != nil {
		return nil, fmt.Errorf("store memory: %w", err)
	}

	if s.queue != nil {
		s.queue.Submit(func(taskCtx context.Context) {
			s.enrich(taskCtx, node)
		})
	}
	return node, nil
}

// GetMemory fetches one memory by id.
func (s *MemoryService) GetMemory(ctx context.Context, id string) (*domain.GraphNode, error) {
	return s.graph.GetNode(ctx, id)
}

// enrich links the memory to its entities and sweeps it for
// contradictions. Either half can fail without affecting the other.
func (s *MemoryService) enrich(ctx context.Context, node *domain.GraphNode) {
	s.linkEntities(ctx, node)

	if s.contradict != nil {
		if _, err := s.contradict.Execute(ctx, node); err != nil {
			s.logger.Warn("contradiction sweep failed",
				zap.String("memory_id", node.ID),
				zap.Error(err))
		}
	}
}

// linkEntities extracts entity names from the content, creates Entity
// nodes for names not yet in the graph, and attaches MENTIONS edges.
func (s *MemoryService) linkEntities(ctx context.Context, node *domain.GraphNode) {
	if s.llm == nil {
		return
	}
	names, err := s.llm.ExtractEntities(ctx, node.Content)
	if err != nil {
		s.logger.Warn("entity extraction failed", zap.String("memory_id", node.ID), zap.Error(err))
		return
	}

	for _, name := range names {
		entityID, err := s.ensureEntity(ctx, name)
		if err != nil {
			s.logger.Warn("entity node creation failed", zap.String("name", name), zap.Error(err))
			continue
		}
		edge := &domain.GraphEdge{
			ID:       uuid.NewString(),
			SourceID: node.ID,
			TargetID: entityID,
			RelType:  domain.RelMentions,
			Weight:   1.0,
		}
		if err := s.graph.CreateEdge(ctx, edge); err != nil {
			s.logger.Warn("entity edge creation failed", zap.String("name", name), zap.Error(err))
		}
	}
}

func (s *MemoryService) ensureEntity(ctx context.Context, name string) (string, error) {
	ids, err := s.graph.ResolveEntityIDs(ctx, []string{name})
	if err != nil {
		return "", err
	}
	if len(ids) > 0 {
		return ids[0], nil
	}

	now := time.Now().UTC()
	entity := &domain.GraphNode{
		ID:         uuid.NewString(),
		Label:      domain.LabelEntity,
		Name:       name,
		Importance: 0.5,
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}
	if err := s.graph.CreateNode(ctx, entity); err != nil {
		return "", err
	}
	return entity.ID, nil
}
