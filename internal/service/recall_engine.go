package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/metrics"
)

const (
	defaultRecallLimit   = 10
	defaultRecallTimeout = 2 * time.Second
)

// Narrow views of the retrievers, one per path, so the engine can be
// exercised against stubs.
type semanticSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int, agentID string) ([]domain.MemoryResult, error)
}

type keywordSearcher interface {
	Search(ctx context.Context, keyword string, topK int, agentID string) ([]domain.MemoryResult, error)
}

type recencyRetriever interface {
	RecentMemories(ctx context.Context, agentID string, limit int) ([]domain.MemoryResult, error)
}

type entityGraphRetriever interface {
	RetrieveByEntities(ctx context.Context, entityNames []string, agentID string) ([]domain.MemoryResult, error)
}

// RecallEngine fans a single query out to all active retrieval paths
// under one shared deadline, isolates per-path failures, and merges the
// partial results by id. It never returns an error: a failing path
// contributes nothing, and a recall that hits the deadline is a total
// miss rather than a partial hit, trading completeness for predictable
// latency.
type RecallEngine struct {
	semantic semanticSearcher
	keyword  keywordSearcher
	temporal recencyRetriever
	graph    entityGraphRetriever
	metrics  *metrics.Sink
	logger   *zap.Logger
}

func NewRecallEngine(
	semantic *SemanticRetriever,
	keyword *ContextRetriever,
	temporal *TemporalRetriever,
	graph *GraphRetriever,
	sink *metrics.Sink,
	logger *zap.Logger,
) *RecallEngine {
	return &RecallEngine{
		semantic: semantic,
		keyword:  keyword,
		temporal: temporal,
		graph:    graph,
		metrics:  sink,
		logger:   logger,
	}
}

// RecallRequest carries one recall's inputs. Limit applies per path;
// Timeout of zero means the default 2s deadline.
type RecallRequest struct {
	Query          string
	QueryEmbedding []float32
	AgentID        string
	EntityNames    []string
	Limit          int
	Timeout        time.Duration
}

type pathTask struct {
	name string
	run  func(ctx context.Context) ([]domain.MemoryResult, error)
}

// Recall launches one task per active path (graph only when entity names
// are supplied), waits for all of them or the deadline, and returns the
// deduplicated union. Results are not ranked here.
func (e *RecallEngine) Recall(ctx context.Context, req RecallRequest) []domain.MemoryResult {
	if req.Limit <= 0 {
		req.Limit = defaultRecallLimit
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultRecallTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tasks := []pathTask{
		{PathSemantic, func(ctx context.Context) ([]domain.MemoryResult, error) {
			return e.semantic.Search(ctx, req.QueryEmbedding, req.Limit, req.AgentID)
		}},
		{PathKeyword, func(ctx context.Context) ([]domain.MemoryResult, error) {
			return e.keyword.Search(ctx, req.Query, req.Limit, req.AgentID)
		}},
		{PathTemporal, func(ctx context.Context) ([]domain.MemoryResult, error) {
			return e.temporal.RecentMemories(ctx, req.AgentID, req.Limit)
		}},
	}
	if len(req.EntityNames) > 0 {
		tasks = append(tasks, pathTask{PathGraph, func(ctx context.Context) ([]domain.MemoryResult, error) {
			return e.graph.RetrieveByEntities(ctx, req.EntityNames, req.AgentID)
		}})
	}

	// Each slot is written by exactly one goroutine; after done closes
	// the slice is read-only. Merging from this slice in task order keeps
	// the merge deterministic no matter which path finished first.
	outputs := make([][]domain.MemoryResult, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task pathTask) {
			defer wg.Done()
			outputs[i] = e.safeRetrieve(ctx, task)
		}(i, task)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Strict policy: a timed-out recall is a total miss. In-flight
		// store calls may still complete server-side; their results are
		// discarded.
		e.metrics.RecallTimeout()
		e.logger.Warn("recall deadline exceeded, discarding in-flight paths",
			zap.Duration("timeout", timeout),
			zap.String("agent_id", req.AgentID))
		return nil
	}

	merged := mergeByID(outputs)
	e.logger.Info("recall complete",
		zap.Int("paths", len(tasks)),
		zap.Int("unique_results", len(merged)),
		zap.String("agent_id", req.AgentID))
	return merged
}

// safeRetrieve converts any path failure, error or panic, into an empty
// result list so one path can never abort the others.
func (e *RecallEngine) safeRetrieve(ctx context.Context, task pathTask) (results []domain.MemoryResult) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.PathFailure(task.name)
			e.logger.Error("retrieval path panicked", zap.String("path", task.name), zap.Any("panic", r))
			results = nil
		}
	}()

	results, err := task.run(ctx)
	if err != nil {
		e.metrics.PathFailure(task.name)
		e.logger.Error("retrieval path failed", zap.String("path", task.name), zap.Error(err))
		return nil
	}
	return results
}

// mergeByID deduplicates path outputs by result id. The first occurrence
// fixes a result's position; on a duplicate id the higher score wins but
// the paths_found histories are unioned either way.
func mergeByID(outputs [][]domain.MemoryResult) []domain.MemoryResult {
	var merged []domain.MemoryResult
	index := make(map[string]int)

	for _, results := range outputs {
		for _, res := range results {
			if at, ok := index[res.ID]; ok {
				existing := &merged[at]
				existing.MergePaths(&res)
				if res.Score > existing.Score {
					paths := existing.PathsFound
					merged[at] = res
					merged[at].PathsFound = paths
				}
				continue
			}
			index[res.ID] = len(merged)
			merged = append(merged, res)
		}
	}
	return merged
}
