package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/metrics"
)

// RecallParams is one recall request as received from a caller.
type RecallParams struct {
	Query          string
	AgentID        string
	Mode           domain.ReasoningMode
	Limit          int
	EntityNames    []string
	MetadataFilter map[string]any
	Timeout        time.Duration
}

// RecallService runs the full recall pipeline: cache lookup, query
// embedding, entity extraction, multi-path retrieval, fusion ranking and
// cache fill. Every stage after the cache lookup degrades independently;
// the pipeline itself never returns an error, only fewer (or zero)
// results.
type RecallService struct {
	engine    *RecallEngine
	ranker    *FusionRanker
	cache     *QueryCache
	embedder  domain.EmbeddingClient
	llm       domain.LLMClient
	logger    *zap.Logger
	metrics   *metrics.Sink

	// LiteMode skips language-model entity extraction, leaving the graph
	// path to callers that supply entity names themselves.
	LiteMode bool

	// DefaultTimeout bounds the retrieval fan-out when a request does not
	// carry its own deadline.
	DefaultTimeout time.Duration
}

func NewRecallService(
	engine *RecallEngine,
	ranker *FusionRanker,
	cache *QueryCache,
	embedder domain.EmbeddingClient,
	llm domain.LLMClient,
	logger *zap.Logger,
	sink *metrics.Sink,
) *RecallService {
	return &RecallService{
		engine:   engine,
		ranker:   ranker,
		cache:    cache,
		embedder: embedder,
		llm:      llm,
		logger:   logger,
		metrics:  sink,
	}
}

// Recall answers a query with the agent's most relevant memories. A
// cached response is returned verbatim; otherwise the engine fans out
// over every retrieval path and the ranker orders the merged results for
// the requested reasoning mode.
func (s *RecallService) Recall(ctx context.Context, params RecallParams) []domain.MemoryResult {
	if params.Limit <= 0 {
		params.Limit = defaultRecallLimit
	}
	if params.Timeout <= 0 {
		params.Timeout = s.DefaultTimeout
	}

	lookupStart := time.Now()
	key := s.cache.Key(params.Query, params.AgentID, params.Limit, params.MetadataFilter)
	cached := s.cache.Get(key)
	s.metrics.ObserveStage("cache_lookup", time.Since(lookupStart))
	if cached != nil {
		s.logger.Debug("recall served from cache", zap.String("agent_id", params.AgentID))
		return cached
	}

	embedding := s.embedQuery(ctx, params.Query)
	entities := s.resolveEntities(ctx, params)

	retrieveStart := time.Now()
	// Over-fetch so the ranker has room to reorder before truncation.
	merged := s.engine.Recall(ctx, RecallRequest{
		Query:          params.Query,
		QueryEmbedding: embedding,
		AgentID:        params.AgentID,
		EntityNames:    entities,
		Limit:          params.Limit * 2,
		Timeout:        params.Timeout,
	})
	s.metrics.ObserveStage("retrieve", time.Since(retrieveStart))
	if len(merged) == 0 {
		return nil
	}

	rankStart := time.Now()
	ranked := s.ranker.Rank(merged, params.Mode, nil, time.Now())
	s.metrics.ObserveStage("rank", time.Since(rankStart))

	if len(ranked) > params.Limit {
		ranked = ranked[:params.Limit]
	}
	s.cache.Set(key, ranked)
	return ranked
}

func (s *RecallService) embedQuery(ctx context.Context, query string) []float32 {
	if s.embedder == nil {
		return nil
	}
	start := time.Now()
	embedding, err := s.embedder.Embed(ctx, query)
	s.metrics.ObserveStage("embed", time.Since(start))
	if err != nil {
		s.logger.Warn("query embedding failed, semantic path disabled", zap.Error(err))
		return nil
	}
	return embedding
}

// resolveEntities returns caller-supplied entity names when present, and
// otherwise extracts them from the query unless running in lite mode.
func (s *RecallService) resolveEntities(ctx context.Context, params RecallParams) []string {
	if len(params.EntityNames) > 0 {
		return params.EntityNames
	}
	if s.LiteMode || s.llm == nil {
		return nil
	}

	start := time.Now()
	entities, err := s.llm.ExtractEntities(ctx, params.Query)
	s.metrics.ObserveStage("extract_entities", time.Since(start))
	if err != nil {
		s.logger.Warn("entity extraction failed, graph path disabled", zap.Error(err))
		return nil
	}
	return entities
}
