package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

const entityProvenance = "graph_entity"

// ContextRetriever performs keyword full-text search over experience
// content and over entity names. Entity hits are synthesized into
// memory-shaped results so the downstream merge treats all paths alike.
type ContextRetriever struct {
	graph  domain.GraphStore
	logger *zap.Logger
}

func NewContextRetriever(graph domain.GraphStore, logger *zap.Logger) *ContextRetriever {
	return &ContextRetriever{graph: graph, logger: logger}
}

// Search runs both sub-searches, merges and sorts by score descending,
// then truncates to topK. A failed sub-search is logged and skipped; the
// other subset is still returned.
func (r *ContextRetriever) Search(ctx context.Context, keyword string, topK int, agentID string) ([]domain.MemoryResult, error) {
	var results []domain.MemoryResult

	expNodes, err := r.graph.FullTextSearch(ctx, domain.LabelExperience, keyword, topK, domain.NodeFilter{AgentID: agentID})
	if err != nil {
		r.logger.Error("experience full-text search failed", zap.Error(err))
	} else {
		for i := range expNodes {
			results = append(results, resultFromNode(&expNodes[i], 1.0, "episodic"))
		}
	}

	entNodes, err := r.graph.FullTextSearch(ctx, domain.LabelEntity, keyword, topK, domain.NodeFilter{})
	if err != nil {
		r.logger.Error("entity full-text search failed", zap.Error(err))
	} else {
		for i := range entNodes {
			results = append(results, entityResult(&entNodes[i]))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK && topK > 0 {
		results = results[:topK]
	}
	return results, nil
}

func entityResult(n *domain.GraphNode) domain.MemoryResult {
	id := n.ID
	if id == "" {
		id = n.Name
	}

	entityType := n.EntityType
	if entityType == "" {
		entityType = "Unknown"
	}

	confidence := n.Importance
	if confidence == 0 {
		confidence = 0.5
	}

	return domain.MemoryResult{
		ID:         id,
		Content:    fmt.Sprintf("Entity: %s (Type: %s)", n.Name, entityType),
		Score:      1.0,
		Layer:      "semantic",
		Confidence: domain.ClampScore(confidence),
		Provenance: entityProvenance,
		CreatedAt:  n.CreatedAt,
	}
}
