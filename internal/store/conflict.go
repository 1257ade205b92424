package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mnemograph/mnemo/internal/domain"
)

// ConflictStore persists CONFLICTS_WITH edges in graph_edges. Conflict
// edges are never deleted; resolution is the only mutation, applied as a
// single guarded UPDATE so the pending -> terminal transition happens at
// most once even under concurrent resolution attempts.
type ConflictStore struct {
	db *pgxpool.Pool
}

func NewConflictStore(db *pgxpool.Pool) *ConflictStore {
	return &ConflictStore{db: db}
}

func (s *ConflictStore) Create(ctx context.Context, e *domain.ConflictEdge) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO graph_edges (id, source_id, target_id, rel_type, weight, status, severity, resolution_notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		e.ID, e.SourceID, e.TargetID, domain.RelConflictsWith,
		e.Weight, e.Status, e.Severity, e.ResolutionNotes,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (s *ConflictStore) Resolve(ctx context.Context, conflictID string, status domain.ConflictStatus, resolvedBy string, notes *string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE graph_edges
		 SET status = $2,
		     resolved_by = $3,
		     resolution_date = NOW(),
		     resolution_notes = COALESCE($4, resolution_notes),
		     updated_at = NOW()
		 WHERE id = $1 AND rel_type = $5 AND status = $6`,
		conflictID, status, resolvedBy, notes,
		domain.RelConflictsWith, domain.ConflictPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ConflictStore) ListPending(ctx context.Context, agentID string) ([]domain.ConflictSummary, error) {
	query := `SELECT e.id, e.source_id, e.target_id, e.status, e.severity, e.weight,
	                 e.resolved_by, e.resolution_date, e.resolution_notes, e.created_at, e.updated_at,
	                 a.content, b.content
	          FROM graph_edges e
	          JOIN graph_nodes a ON a.id = e.source_id
	          JOIN graph_nodes b ON b.id = e.target_id
	          WHERE e.rel_type = $1 AND e.status = $2`
	args := []any{domain.RelConflictsWith, domain.ConflictPending}

	if agentID != "" {
		args = append(args, agentID)
		query += ` AND a.agent_id = $3`
	}

	// Severity is advisory metadata, but listings surface it first-class:
	// most severe first, oldest first within a severity.
	query += ` ORDER BY CASE e.severity
	              WHEN 'critical' THEN 0
	              WHEN 'high' THEN 1
	              WHEN 'medium' THEN 2
	              WHEN 'low' THEN 3
	              ELSE 4 END,
	           e.created_at ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ConflictSummary
	for rows.Next() {
		var c domain.ConflictSummary
		if err := rows.Scan(&c.ID, &c.SourceID, &c.TargetID, &c.Status, &c.Severity, &c.Weight,
			&c.ResolvedBy, &c.ResolutionDate, &c.ResolutionNotes, &c.CreatedAt, &c.UpdatedAt,
			&c.SourceContent, &c.TargetContent); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
