package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/domain"
)

const (
	// Candidates below this cosine similarity are too unrelated to be
	// worth a model call.
	candidateSimilarityThreshold = 0.7
	candidateLimit               = 5
)

// ConflictCandidate is an existing memory similar enough to a new one
// that the pair is worth verifying with the language model.
type ConflictCandidate struct {
	Node       domain.GraphNode
	Similarity float64
}

// ContradictionDetector finds stored memories that may contradict a new
// record. Detection is two-stage: vector similarity proposes candidates
// cheaply, then the language model verifies each pair. Only verified
// pairs become conflicts.
type ContradictionDetector struct {
	graph  domain.GraphStore
	llm    domain.LLMClient
	logger *zap.Logger

	SimilarityThreshold float64
	CandidateLimit      int
}

func NewContradictionDetector(graph domain.GraphStore, llm domain.LLMClient, logger *zap.Logger) *ContradictionDetector {
	return &ContradictionDetector{
		graph:               graph,
		llm:                 llm,
		logger:              logger,
		SimilarityThreshold: candidateSimilarityThreshold,
		CandidateLimit:      candidateLimit,
	}
}

// FindCandidates returns stored memories similar to the record, excluding
// the record itself. A record with no embedding cannot be compared and
// yields no candidates.
func (d *ContradictionDetector) FindCandidates(ctx context.Context, record *domain.GraphNode) ([]ConflictCandidate, error) {
	if len(record.Embedding) == 0 {
		d.logger.Warn("skipping contradiction check for record without embedding", zap.String("id", record.ID))
		return nil, nil
	}

	// Over-fetch by one in case the record itself comes back.
	scored, err := d.graph.VectorSearch(ctx, domain.LabelExperience, record.Embedding, d.CandidateLimit+1, domain.NodeFilter{AgentID: record.AgentID})
	if err != nil {
		return nil, err
	}

	candidates := make([]ConflictCandidate, 0, d.CandidateLimit)
	for _, s := range scored {
		if s.Node.ID == record.ID || s.Similarity < d.SimilarityThreshold {
			continue
		}
		candidates = append(candidates, ConflictCandidate{Node: s.Node, Similarity: s.Similarity})
		if len(candidates) >= d.CandidateLimit {
			break
		}
	}
	return candidates, nil
}

// Verify asks the language model whether the pair genuinely contradicts.
// A failed verification is treated as not-a-contradiction so that model
// outages never spray spurious conflict edges.
func (d *ContradictionDetector) Verify(ctx context.Context, newContent, existingContent string) *domain.ContradictionVerification {
	if d.llm == nil {
		return &domain.ContradictionVerification{
			IsContradiction: false,
			Reasoning:       "verification failed: no language model configured",
		}
	}
	v, err := d.llm.VerifyContradiction(ctx, newContent, existingContent)
	if err != nil {
		d.logger.Warn("contradiction verification failed", zap.Error(err))
		return &domain.ContradictionVerification{
			IsContradiction: false,
			Reasoning:       "verification failed: " + err.Error(),
		}
	}
	return v
}
