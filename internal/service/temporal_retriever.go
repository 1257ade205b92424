package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mnemograph/mnemo/internal/domain"
)

// TemporalRetriever returns the most recent experiences for an agent.
// Scores are fixed at 1.0: being recent enough to list is binary here,
// and actual recency weighting happens in the fusion ranker.
type TemporalRetriever struct {
	graph domain.GraphStore

	// Lookback bounds how far back RecentMemories reaches. Zero means
	// unbounded.
	Lookback time.Duration
}

func NewTemporalRetriever(graph domain.GraphStore) *TemporalRetriever {
	return &TemporalRetriever{graph: graph}
}

func (r *TemporalRetriever) RecentMemories(ctx context.Context, agentID string, limit int) ([]domain.MemoryResult, error) {
	var since *time.Time
	if r.Lookback > 0 {
		t := time.Now().UTC().Add(-r.Lookback)
		since = &t
	}

	nodes, err := r.graph.RecentNodes(ctx, domain.LabelExperience, agentID, limit, since)
	if err != nil {
		return nil, fmt.Errorf("recent memories: %w", err)
	}

	results := make([]domain.MemoryResult, 0, len(nodes))
	for i := range nodes {
		results = append(results, resultFromNode(&nodes[i], 1.0, "episodic"))
	}
	return results, nil
}

// MemoriesInRange returns an agent's experiences created inside an
// explicit date range, newest first.
func (r *TemporalRetriever) MemoriesInRange(ctx context.Context, agentID string, start, end time.Time, limit int) ([]domain.MemoryResult, error) {
	nodes, err := r.graph.NodesInRange(ctx, domain.LabelExperience, agentID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("memories in range: %w", err)
	}

	results := make([]domain.MemoryResult, 0, len(nodes))
	for i := range nodes {
		results = append(results, resultFromNode(&nodes[i], 1.0, "episodic"))
	}
	return results, nil
}
