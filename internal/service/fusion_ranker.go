package service

import (
	"math"
	"sort"
	"time"

	"github.com/mnemograph/mnemo/internal/domain"
)

const (
	defaultRecencyDecay = 0.01 // per hour
	neutralRecency      = 0.5
)

// RankWeights is one ranking profile: how much each signal contributes
// to the fused score. Weights need not sum to 1; the combined score is
// clamped to [0,1] afterwards.
type RankWeights struct {
	Relevance  float64
	Recency    float64
	Confidence float64
	PathBoost  float64
}

var rankProfiles = map[domain.ReasoningMode]RankWeights{
	domain.ReasoningFast:        {Relevance: 0.8, Recency: 0.1, Confidence: 0.1, PathBoost: 0.05},
	domain.ReasoningDeep:        {Relevance: 0.4, Recency: 0.2, Confidence: 0.4, PathBoost: 0.1},
	domain.ReasoningTemporal:    {Relevance: 0.1, Recency: 0.8, Confidence: 0.1, PathBoost: 0.05},
	domain.ReasoningCausal:      {Relevance: 0.4, Recency: 0.1, Confidence: 0.5, PathBoost: 0.15},
	domain.ReasoningDescriptive: {Relevance: 0.6, Recency: 0.3, Confidence: 0.1, PathBoost: 0.05},
}

// ProfileWeights returns the weight profile for a reasoning mode,
// falling back to the fast profile.
func ProfileWeights(mode domain.ReasoningMode) RankWeights {
	if w, ok := rankProfiles[mode]; ok {
		return w
	}
	return rankProfiles[domain.ReasoningFast]
}

// FusionRanker combines relevance, recency, confidence and a multi-path
// corroboration boost into one score per memory. Rank is pure: inputs
// are not mutated and the output carries fresh scores.
type FusionRanker struct {
	DecayRate float64 // recency decay per hour
	RRFK      int
}

func NewFusionRanker() *FusionRanker {
	return &FusionRanker{
		DecayRate: defaultRecencyDecay,
		RRFK:      defaultRRFK,
	}
}

// Rank scores and sorts memories. A nil weights override selects the
// profile for the reasoning mode. now anchors recency so that ranking a
// given input is reproducible. The fused value replaces Score on the
// returned copies, so Rank is a single projection step: feeding its
// output back in fuses already-fused scores and can order differently.
func (r *FusionRanker) Rank(memories []domain.MemoryResult, mode domain.ReasoningMode, weights *RankWeights, now time.Time) []domain.MemoryResult {
	if len(memories) == 0 {
		return nil
	}

	profile := ProfileWeights(mode)
	if weights != nil {
		profile = *weights
	}

	ranked := make([]domain.MemoryResult, len(memories))
	for i, mem := range memories {
		fused := profile.Relevance*mem.Score +
			profile.Recency*r.recencyScore(&mem, now) +
			profile.Confidence*mem.Confidence +
			profile.PathBoost*r.pathBoost(&mem)

		ranked[i] = mem
		ranked[i].PathsFound = append([]string(nil), mem.PathsFound...)
		ranked[i].Score = domain.ClampScore(fused)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// recencyScore decays exponentially with hours since creation. Missing
// timestamps score neutral rather than penalizing records whose origin
// layer does not track creation time.
func (r *FusionRanker) recencyScore(mem *domain.MemoryResult, now time.Time) float64 {
	if mem.CreatedAt == nil {
		return neutralRecency
	}
	hours := now.Sub(*mem.CreatedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-r.DecayRate * hours)
}

// pathBoost rewards records corroborated by multiple retrieval paths
// with an RRF-style vote: each path found counts 1/(k+1). Records with
// no recorded path count as one.
func (r *FusionRanker) pathBoost(mem *domain.MemoryResult) float64 {
	paths := len(mem.PathsFound)
	if paths == 0 {
		paths = 1
	}
	return float64(paths) / float64(r.RRFK+1)
}
