package domain

import (
	"context"
	"time"
)

// NodeFilter restricts graph searches to a subset of nodes. Zero values
// mean no restriction.
type NodeFilter struct {
	AgentID    string
	MemoryType string
}

// GraphStore is the property-graph database the retrieval paths run
// against. The store's own indexing is a black box; everything here is
// a pure read except the CRUD methods, and all reads must be safe to
// issue concurrently on one connection pool.
type GraphStore interface {
	CreateNode(ctx context.Context, n *GraphNode) error
	GetNode(ctx context.Context, id string) (*GraphNode, error)
	CreateEdge(ctx context.Context, e *GraphEdge) error

	// VectorSearch returns the topK nodes of the given label nearest to
	// the embedding, with cosine similarity in [0,1], ordered descending.
	VectorSearch(ctx context.Context, label string, embedding []float32, topK int, filter NodeFilter) ([]ScoredNode, error)

	// FullTextSearch matches term against node content and names.
	FullTextSearch(ctx context.Context, label, term string, topK int, filter NodeFilter) ([]GraphNode, error)

	// RecentNodes returns the newest nodes for an agent, ordered by
	// creation time descending. A non-zero since bounds the lookback.
	RecentNodes(ctx context.Context, label, agentID string, limit int, since *time.Time) ([]GraphNode, error)

	// NodesInRange returns an agent's nodes created inside [start, end].
	NodesInRange(ctx context.Context, label, agentID string, start, end time.Time, limit int) ([]GraphNode, error)

	// ResolveEntityIDs maps entity names to node ids, dropping unknowns.
	ResolveEntityIDs(ctx context.Context, names []string) ([]string, error)

	// BoundedTraversal walks up to maxHops from the start nodes. At each
	// hop candidate neighbors are ordered by edge weight descending and
	// truncated to fanOutLimit; edges below minWeight are not followed.
	BoundedTraversal(ctx context.Context, startIDs []string, maxHops, fanOutLimit int, minWeight float64) ([]TraversalHit, error)
}

// ConflictStore persists CONFLICTS_WITH edges. Resolve must be a single
// atomic update against the pending edge so concurrent resolution
// attempts cannot both win.
type ConflictStore interface {
	Create(ctx context.Context, e *ConflictEdge) error
	Resolve(ctx context.Context, conflictID string, status ConflictStatus, resolvedBy string, notes *string) (bool, error)
	ListPending(ctx context.Context, agentID string) ([]ConflictSummary, error)
}

// EmbeddingClient maps text to a fixed-length vector.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMClient covers the language-model calls the core needs.
type LLMClient interface {
	// VerifyContradiction judges whether two text fragments make genuinely
	// contradictory claims, as opposed to differing by context or time.
	VerifyContradiction(ctx context.Context, newContent, existingContent string) (*ContradictionVerification, error)

	// ExtractEntities pulls entity names out of a query for graph seeding.
	ExtractEntities(ctx context.Context, text string) ([]string, error)
}

// KeyValueCache is an advisory TTL cache. Implementations never return
// errors: a failed read is a miss and a failed write is silently dropped,
// so callers always degrade to recomputing.
type KeyValueCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}
