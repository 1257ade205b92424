package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mnemograph/mnemo/internal/domain"
)

// MergeStrategy names one of the fusion policies available for combining
// multi-path results. They are deliberately distinct policies, not
// interchangeable implementations of the same math.
type MergeStrategy string

const (
	// MergeMaxScore keeps the higher score on duplicate ids. This is the
	// policy the recall engine applies inline.
	MergeMaxScore MergeStrategy = "max_score"
	// MergeWeighted applies per-path weights and boosts duplicates
	// additively.
	MergeWeighted MergeStrategy = "weighted"
	// MergeRRF fuses by rank position only, ignoring raw scores.
	MergeRRF MergeStrategy = "rrf"
)

const defaultRRFK = 60

// PathResults groups per-path outputs for the coordinator's merges.
type PathResults struct {
	Semantic []domain.MemoryResult
	Keyword  []domain.MemoryResult
	Graph    []domain.MemoryResult
	Temporal []domain.MemoryResult
}

func (p PathResults) ordered() []struct {
	name    string
	results []domain.MemoryResult
} {
	return []struct {
		name    string
		results []domain.MemoryResult
	}{
		{PathSemantic, p.Semantic},
		{PathKeyword, p.Keyword},
		{PathGraph, p.Graph},
		{PathTemporal, p.Temporal},
	}
}

// MergeWeights maps path name to its contribution weight. Weights are
// normalized to sum to 1.0 before use.
type MergeWeights map[string]float64

// DefaultMergeWeights favors the semantic path, then graph, keyword and
// temporal.
func DefaultMergeWeights() MergeWeights {
	return MergeWeights{
		PathSemantic: 0.4,
		PathKeyword:  0.2,
		PathGraph:    0.3,
		PathTemporal: 0.1,
	}
}

func (w MergeWeights) normalized() MergeWeights {
	total := 0.0
	for _, v := range w {
		total += v
	}
	if total == 0 {
		return w
	}
	norm := make(MergeWeights, len(w))
	for k, v := range w {
		norm[k] = v / total
	}
	return norm
}

// Coordinator merges results from multiple retrieval paths. It exists
// alongside the recall engine's inline merge because the two implement
// different fusion policies; Fuse selects between all three.
type Coordinator struct{}

// Fuse dispatches to the named strategy. Weights apply only to the
// weighted strategy.
func (c Coordinator) Fuse(strategy MergeStrategy, paths PathResults, weights MergeWeights) ([]domain.MemoryResult, error) {
	switch strategy {
	case MergeMaxScore:
		ordered := paths.ordered()
		outputs := make([][]domain.MemoryResult, 0, len(ordered))
		for _, p := range ordered {
			outputs = append(outputs, p.results)
		}
		return mergeByID(outputs), nil
	case MergeWeighted:
		return c.MergeResults(paths, weights), nil
	case MergeRRF:
		var sets [][]domain.MemoryResult
		for _, p := range paths.ordered() {
			if len(p.results) > 0 {
				sets = append(sets, p.results)
			}
		}
		return c.ReciprocalRankFusion(sets, defaultRRFK), nil
	}
	return nil, fmt.Errorf("unknown merge strategy: %s", strategy)
}

// MergeResults performs weighted additive fusion: a result's first
// occurrence contributes score*weight; every recurrence increments the
// existing score by its own weighted score, clamped to 1.0, rewarding
// memories corroborated by multiple paths. The layer label is annotated
// with each contributing path.
func (c Coordinator) MergeResults(paths PathResults, weights MergeWeights) []domain.MemoryResult {
	if weights == nil {
		weights = DefaultMergeWeights()
	}
	weights = weights.normalized()

	var merged []domain.MemoryResult
	index := make(map[string]int)

	for _, p := range paths.ordered() {
		weight := weights[p.name]
		for _, res := range p.results {
			if at, ok := index[res.ID]; ok {
				existing := &merged[at]
				existing.Score = domain.ClampScore(existing.Score + res.Score*weight)
				existing.MergePaths(&res)
				existing.Layer = annotateLayer(existing.Layer, p.name)
				continue
			}

			res.Score = domain.ClampScore(res.Score * weight)
			res.Layer = fmt.Sprintf("%s (%s)", res.Layer, p.name)
			index[res.ID] = len(merged)
			merged = append(merged, res)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

func annotateLayer(layer, path string) string {
	if strings.Contains(layer, path) {
		return layer
	}
	return layer + "+" + path
}

// ReciprocalRankFusion merges ranked lists by rank position alone:
// each document scores the sum of 1/(k+rank) over every list it appears
// in. Documents absent from a list simply get no contribution from it.
func (c Coordinator) ReciprocalRankFusion(resultSets [][]domain.MemoryResult, k int) []domain.MemoryResult {
	if k <= 0 {
		k = defaultRRFK
	}

	scores := make(map[string]float64)
	var order []string
	byID := make(map[string]domain.MemoryResult)

	for _, set := range resultSets {
		for rank, res := range set {
			if _, ok := scores[res.ID]; !ok {
				order = append(order, res.ID)
				byID[res.ID] = res
			}
			scores[res.ID] += 1.0 / float64(k+rank+1)
		}
	}

	fused := make([]domain.MemoryResult, 0, len(order))
	for _, id := range order {
		res := byID[id]
		res.Score = scores[id]
		fused = append(fused, res)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
