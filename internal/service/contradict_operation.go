package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/metrics"
)

// ConflictRecord summarizes one conflict created by a contradiction
// sweep over a new memory.
type ConflictRecord struct {
	ConflictID string          `json:"conflict_id"`
	TargetID   string          `json:"target_id"`
	Severity   domain.Severity `json:"severity"`
	Reasoning  string          `json:"reasoning"`
}

// ContradictService runs contradiction detection for a newly stored
// memory: candidate search, model verification, analysis and conflict
// creation. It is invoked from the enrichment queue, off the ingest
// path.
type ContradictService struct {
	detector   *ContradictionDetector
	resolution *ResolutionEngine
	logger     *zap.Logger
	metrics    *metrics.Sink
}

func NewContradictService(detector *ContradictionDetector, resolution *ResolutionEngine, logger *zap.Logger, sink *metrics.Sink) *ContradictService {
	return &ContradictService{
		detector:   detector,
		resolution: resolution,
		logger:     logger,
		metrics:    sink,
	}
}

// Execute checks a record against its nearest stored memories and
// records a pending conflict for every verified contradiction. Failures
// on individual candidates are logged and skipped so one bad pair never
// hides the rest.
func (s *ContradictService) Execute(ctx context.Context, record *domain.GraphNode) ([]ConflictRecord, error) {
	candidates, err := s.detector.FindCandidates(ctx, record)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var conflicts []ConflictRecord
	for _, cand := range candidates {
		verification := s.detector.Verify(ctx, record.Content, cand.Node.Content)
		analysis := AnalyzeConflict(verification)
		if !analysis.IsContradiction {
			continue
		}

		conflictID, err := s.resolution.CreateConflict(ctx, record.ID, cand.Node.ID, analysis)
		if err != nil {
			s.logger.Error("recording conflict failed",
				zap.String("source_id", record.ID),
				zap.String("target_id", cand.Node.ID),
				zap.Error(err))
			continue
		}
		s.metrics.ConflictCreated()
		conflicts = append(conflicts, ConflictRecord{
			ConflictID: conflictID,
			TargetID:   cand.Node.ID,
			Severity:   analysis.Severity,
			Reasoning:  analysis.Reasoning,
		})
	}
	return conflicts, nil
}
