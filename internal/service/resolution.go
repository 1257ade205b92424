package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

// ErrInvalidStatus is returned when a resolution request names a status
// that is not a terminal conflict state.
var ErrInvalidStatus = errors.New("invalid resolution status")

// conflictWeight is the fixed weight on every CONFLICTS_WITH edge. The
// ranking layers never read it, so it carries no signal yet.
const conflictWeight = 1.0

// ResolutionEngine owns the conflict edge lifecycle: creating pending
// edges for verified contradictions and moving them to a terminal state
// exactly once.
type ResolutionEngine struct {
	store  domain.ConflictStore
	logger *zap.Logger
}

func NewResolutionEngine(store domain.ConflictStore, logger *zap.Logger) *ResolutionEngine {
	return &ResolutionEngine{store: store, logger: logger}
}

// CreateConflict records a verified contradiction between two memories as
// a pending edge and returns its id.
func (e *ResolutionEngine) CreateConflict(ctx context.Context, sourceID, targetID string, analysis domain.ConflictAnalysis) (string, error) {
	id := "conf_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	now := time.Now().UTC()

	var notes *string
	if analysis.Reasoning != "" {
		notes = &analysis.Reasoning
	}

	edge := &domain.ConflictEdge{
		ID:              id,
		SourceID:        sourceID,
		TargetID:        targetID,
		Status:          domain.ConflictPending,
		Severity:        analysis.Severity,
		Weight:          conflictWeight,
		ResolutionNotes: notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.store.Create(ctx, edge); err != nil {
		return "", fmt.Errorf("create conflict edge: %w", err)
	}

	e.logger.Info("conflict recorded",
		zap.String("conflict_id", id),
		zap.String("source_id", sourceID),
		zap.String("target_id", targetID),
		zap.String("severity", string(analysis.Severity)))
	return id, nil
}

// ResolveConflict moves a pending conflict to a terminal state. It
// returns false when the conflict does not exist or was already
// resolved; only a status outside the terminal set is an error, checked
// before any store access.
func (e *ResolutionEngine) ResolveConflict(ctx context.Context, conflictID string, status domain.ConflictStatus, resolvedBy string, notes *string) (bool, error) {
	if !domain.TerminalConflictStatus(status) {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	resolved, err := e.store.Resolve(ctx, conflictID, status, resolvedBy, notes)
	if err != nil {
		e.logger.Error("conflict resolution failed", zap.String("conflict_id", conflictID), zap.Error(err))
		return false, nil
	}
	if resolved {
		e.logger.Info("conflict resolved",
			zap.String("conflict_id", conflictID),
			zap.String("status", string(status)),
			zap.String("resolved_by", resolvedBy))
	}
	return resolved, nil
}

// GetPendingConflicts lists unresolved conflicts, most severe first. A
// store failure degrades to an empty listing.
func (e *ResolutionEngine) GetPendingConflicts(ctx context.Context, agentID string) []domain.ConflictSummary {
	summaries, err := e.store.ListPending(ctx, agentID)
	if err != nil {
		e.logger.Error("listing pending conflicts failed", zap.Error(err))
		return nil
	}
	return summaries
}
