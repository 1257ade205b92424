package service

import (
	"context"
	"fmt"

	"github.com/mnemograph/mnemo/internal/domain"
)

// SemanticRetriever performs nearest-neighbor vector search over
// Experience records. Similarity becomes the result score.
type SemanticRetriever struct {
	graph domain.GraphStore

	// MemoryType restricts the search to one memory type when non-empty.
	MemoryType string
}

func NewSemanticRetriever(graph domain.GraphStore) *SemanticRetriever {
	return &SemanticRetriever{graph: graph}
}

func (r *SemanticRetriever) Search(ctx context.Context, embedding []float32, topK int, agentID string) ([]domain.MemoryResult, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	hits, err := r.graph.VectorSearch(ctx, domain.LabelExperience, embedding, topK, domain.NodeFilter{
		AgentID:    agentID,
		MemoryType: r.MemoryType,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic vector search: %w", err)
	}

	results := make([]domain.MemoryResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, resultFromNode(&hit.Node, hit.Similarity, "semantic"))
	}
	return results, nil
}
