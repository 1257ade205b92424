package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

const (
	defaultMaxHops     = 2
	defaultFanOutLimit = 5
	defaultMinWeight   = 0.2
)

// GraphRetriever resolves entity names to graph nodes and walks the
// graph from them with a bounded traversal. Only nodes that look like
// memory records survive the frontier filter; the traversal path is
// recorded on each result.
type GraphRetriever struct {
	graph  domain.GraphStore
	logger *zap.Logger

	MaxHops     int
	FanOutLimit int
	MinWeight   float64
}

func NewGraphRetriever(graph domain.GraphStore, logger *zap.Logger) *GraphRetriever {
	return &GraphRetriever{
		graph:       graph,
		logger:      logger,
		MaxHops:     defaultMaxHops,
		FanOutLimit: defaultFanOutLimit,
		MinWeight:   defaultMinWeight,
	}
}

func (r *GraphRetriever) RetrieveByEntities(ctx context.Context, entityNames []string, agentID string) ([]domain.MemoryResult, error) {
	if len(entityNames) == 0 {
		return nil, nil
	}

	startIDs, err := r.graph.ResolveEntityIDs(ctx, entityNames)
	if err != nil {
		return nil, fmt.Errorf("resolve entities: %w", err)
	}
	if len(startIDs) == 0 {
		r.logger.Debug("no entities found", zap.Strings("names", entityNames))
		return nil, nil
	}

	hits, err := r.graph.BoundedTraversal(ctx, startIDs, r.MaxHops, r.FanOutLimit, r.MinWeight)
	if err != nil {
		return nil, fmt.Errorf("bounded traversal: %w", err)
	}

	seen := make(map[string]bool)
	var results []domain.MemoryResult

	for i := range hits {
		node := &hits[i].Node
		if !node.IsMemoryRecord() {
			continue
		}
		if agentID != "" && node.AgentID != agentID {
			continue
		}
		if seen[node.ID] {
			continue
		}
		seen[node.ID] = true

		res := resultFromNode(node, hits[i].PathStrength, "graph")
		res.PathsFound = []string{strings.Join(hits[i].Path, " -> ")}
		results = append(results, res)
	}
	return results, nil
}
