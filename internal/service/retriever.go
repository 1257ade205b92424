package service

import (
	"github.com/mnemograph/mnemo/internal/domain"
)

// Retrieval path names, used for logging, metrics and merge weighting.
const (
	PathSemantic = "semantic"
	PathKeyword  = "keyword"
	PathTemporal = "temporal"
	PathGraph    = "graph"
)

// resultFromNode maps a graph node into the uniform result shape every
// path returns. The node's own memory type wins over the caller's layer
// hint when present.
func resultFromNode(n *domain.GraphNode, score float64, layer string) domain.MemoryResult {
	provenance := n.SessionID
	if provenance == "" {
		provenance = "unknown"
	}

	finalLayer := layer
	if n.MemoryType != "" {
		finalLayer = n.MemoryType
	}

	return domain.MemoryResult{
		ID:         n.ID,
		Content:    n.Content,
		Score:      domain.ClampScore(score),
		Layer:      finalLayer,
		Confidence: domain.ClampScore(n.Confidence),
		Provenance: provenance,
		CreatedAt:  n.CreatedAt,
	}
}
