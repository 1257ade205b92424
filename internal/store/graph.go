package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/mnemograph/mnemo/internal/domain"
)

// GraphStore implements domain.GraphStore on Postgres. Nodes live in
// graph_nodes with a pgvector embedding column; edges live in
// graph_edges with a weight used by the bounded traversal.
type GraphStore struct {
	db *pgxpool.Pool
}

func NewGraphStore(db *pgxpool.Pool) *GraphStore {
	return &GraphStore{db: db}
}

const nodeColumns = `id, label, content, agent_id, memory_type, session_id, name, entity_type, confidence, importance, created_at, updated_at`

func scanNode(row pgx.Row) (*domain.GraphNode, error) {
	n := &domain.GraphNode{}
	err := row.Scan(&n.ID, &n.Label, &n.Content, &n.AgentID, &n.MemoryType, &n.SessionID,
		&n.Name, &n.EntityType, &n.Confidence, &n.Importance, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *GraphStore) CreateNode(ctx context.Context, n *domain.GraphNode) error {
	var embedding *pgvector.Vector
	if len(n.Embedding) > 0 {
		v := pgvector.NewVector(n.Embedding)
		embedding = &v
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO graph_nodes (id, label, content, agent_id, memory_type, session_id, name, entity_type, confidence, importance, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		n.ID, n.Label, n.Content, n.AgentID, n.MemoryType, n.SessionID,
		n.Name, n.EntityType, n.Confidence, n.Importance, embedding,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (s *GraphStore) GetNode(ctx context.Context, id string) (*domain.GraphNode, error) {
	n, err := scanNode(s.db.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM graph_nodes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *GraphStore) CreateEdge(ctx context.Context, e *domain.GraphEdge) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO graph_edges (id, source_id, target_id, rel_type, weight)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (source_id, target_id, rel_type) DO UPDATE
		 SET weight = GREATEST(graph_edges.weight, EXCLUDED.weight),
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		e.ID, e.SourceID, e.TargetID, e.RelType, e.Weight,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (s *GraphStore) VectorSearch(ctx context.Context, label string, embedding []float32, topK int, filter domain.NodeFilter) ([]domain.ScoredNode, error) {
	if topK <= 0 {
		topK = 10
	}
	vec := pgvector.NewVector(embedding)

	query := `SELECT ` + nodeColumns + `, 1 - (embedding <=> $1) AS similarity
		 FROM graph_nodes
		 WHERE label = $2 AND embedding IS NOT NULL`
	args := []any{vec, label}

	if filter.AgentID != "" {
		args = append(args, filter.AgentID)
		query += fmt.Sprintf(" AND agent_id = $%d", len(args))
	}
	if filter.MemoryType != "" {
		args = append(args, filter.MemoryType)
		query += fmt.Sprintf(" AND memory_type = $%d", len(args))
	}

	args = append(args, topK)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ScoredNode
	for rows.Next() {
		var sn domain.ScoredNode
		n := &sn.Node
		if err := rows.Scan(&n.ID, &n.Label, &n.Content, &n.AgentID, &n.MemoryType, &n.SessionID,
			&n.Name, &n.EntityType, &n.Confidence, &n.Importance, &n.CreatedAt, &n.UpdatedAt,
			&sn.Similarity); err != nil {
			return nil, err
		}
		results = append(results, sn)
	}
	return results, rows.Err()
}

func (s *GraphStore) FullTextSearch(ctx context.Context, label, term string, topK int, filter domain.NodeFilter) ([]domain.GraphNode, error) {
	if topK <= 0 {
		topK = 10
	}

	query := `SELECT ` + nodeColumns + `
		 FROM graph_nodes
		 WHERE label = $1
		   AND to_tsvector('english', coalesce(content, '') || ' ' || coalesce(name, '')) @@ plainto_tsquery('english', $2)`
	args := []any{label, term}

	if filter.AgentID != "" {
		args = append(args, filter.AgentID)
		query += fmt.Sprintf(" AND agent_id = $%d", len(args))
	}

	args = append(args, topK)
	query += fmt.Sprintf(` ORDER BY ts_rank(to_tsvector('english', coalesce(content, '') || ' ' || coalesce(name, '')), plainto_tsquery('english', $2)) DESC LIMIT $%d`, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNodes(rows)
}

func (s *GraphStore) RecentNodes(ctx context.Context, label, agentID string, limit int, since *time.Time) ([]domain.GraphNode, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + nodeColumns + ` FROM graph_nodes WHERE label = $1 AND agent_id = $2`
	args := []any{label, agentID}

	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNodes(rows)
}

func (s *GraphStore) NodesInRange(ctx context.Context, label, agentID string, start, end time.Time, limit int) ([]domain.GraphNode, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+nodeColumns+`
		 FROM graph_nodes
		 WHERE label = $1 AND agent_id = $2 AND created_at >= $3 AND created_at <= $4
		 ORDER BY created_at DESC LIMIT $5`,
		label, agentID, start, end, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNodes(rows)
}

func (s *GraphStore) ResolveEntityIDs(ctx context.Context, names []string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM graph_nodes WHERE label = $1 AND name = ANY($2)`,
		domain.LabelEntity, names,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type frontierItem struct {
	nodeID   string
	path     []string
	strength float64
}

// BoundedTraversal expands hop by hop. Each hop orders a node's incident
// edges by weight descending, keeps at most fanOutLimit of them, and
// skips edges below minWeight. Cumulative path strength is the product
// of traversed edge weights; nodes are reported once, at their first
// (strongest-first) discovery.
func (s *GraphStore) BoundedTraversal(ctx context.Context, startIDs []string, maxHops, fanOutLimit int, minWeight float64) ([]domain.TraversalHit, error) {
	if len(startIDs) == 0 {
		return nil, nil
	}
	if maxHops <= 0 {
		maxHops = 2
	}
	if fanOutLimit <= 0 {
		fanOutLimit = 10
	}

	visited := make(map[string]bool, len(startIDs))
	frontier := make([]frontierItem, 0, len(startIDs))
	for _, id := range startIDs {
		visited[id] = true
		frontier = append(frontier, frontierItem{nodeID: id, strength: 1.0})
	}

	var hits []domain.TraversalHit

	for hop := 0; hop < maxHops && len(frontier) > 0; hop++ {
		var next []frontierItem

		for _, item := range frontier {
			neighbors, err := s.neighborEdges(ctx, item.nodeID, fanOutLimit, minWeight)
			if err != nil {
				return nil, err
			}

			for _, nb := range neighbors {
				if visited[nb.node.ID] {
					continue
				}
				visited[nb.node.ID] = true

				path := make([]string, len(item.path)+1)
				copy(path, item.path)
				path[len(item.path)] = nb.relType

				strength := item.strength * nb.weight

				hits = append(hits, domain.TraversalHit{
					Node:         nb.node,
					Path:         path,
					PathStrength: strength,
				})
				next = append(next, frontierItem{nodeID: nb.node.ID, path: path, strength: strength})
			}
		}

		frontier = next
	}

	return hits, nil
}

type neighborEdge struct {
	node    domain.GraphNode
	relType string
	weight  float64
}

func (s *GraphStore) neighborEdges(ctx context.Context, nodeID string, fanOutLimit int, minWeight float64) ([]neighborEdge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT n.id, n.label, n.content, n.agent_id, n.memory_type, n.session_id, n.name, n.entity_type, n.confidence, n.importance, n.created_at, n.updated_at,
		        e.rel_type, e.weight
		 FROM graph_edges e
		 JOIN graph_nodes n
		   ON n.id = CASE WHEN e.source_id = $1 THEN e.target_id ELSE e.source_id END
		 WHERE (e.source_id = $1 OR e.target_id = $1) AND e.weight >= $2
		 ORDER BY e.weight DESC
		 LIMIT $3`,
		nodeID, minWeight, fanOutLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []neighborEdge
	for rows.Next() {
		var ne neighborEdge
		n := &ne.node
		if err := rows.Scan(&n.ID, &n.Label, &n.Content, &n.AgentID, &n.MemoryType, &n.SessionID,
			&n.Name, &n.EntityType, &n.Confidence, &n.Importance, &n.CreatedAt, &n.UpdatedAt,
			&ne.relType, &ne.weight); err != nil {
			return nil, err
		}
		edges = append(edges, ne)
	}
	return edges, rows.Err()
}

func collectNodes(rows pgx.Rows) ([]domain.GraphNode, error) {
	var nodes []domain.GraphNode
	for rows.Next() {
		var n domain.GraphNode
		if err := rows.Scan(&n.ID, &n.Label, &n.Content, &n.AgentID, &n.MemoryType, &n.SessionID,
			&n.Name, &n.EntityType, &n.Confidence, &n.Importance, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
