package domain

import "time"

// ReasoningMode selects the ranking weight profile applied after recall.
type ReasoningMode string

const (
	ReasoningFast        ReasoningMode = "fast"
	ReasoningDeep        ReasoningMode = "deep"
	ReasoningTemporal    ReasoningMode = "temporal"
	ReasoningCausal      ReasoningMode = "causal"
	ReasoningDescriptive ReasoningMode = "descriptive"
)

// ParseReasoningMode maps a user-supplied string to a known mode,
// falling back to fast.
func ParseReasoningMode(s string) ReasoningMode {
	switch ReasoningMode(s) {
	case ReasoningFast, ReasoningDeep, ReasoningTemporal, ReasoningCausal, ReasoningDescriptive:
		return ReasoningMode(s)
	}
	return ReasoningFast
}

// MemoryResult is the uniform shape every retrieval path returns.
// Identity is ID: two results with the same ID coming out of different
// paths are merged, never duplicated in a final list. Score is mutable
// during merging and ranking; Confidence is fixed by the originating
// retriever.
type MemoryResult struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Score      float64    `json:"score"`
	Layer      string     `json:"layer"`
	PathsFound []string   `json:"paths_found"`
	Confidence float64    `json:"confidence"`
	Provenance string     `json:"provenance"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// AddPath appends a traversal path description if not already present.
// PathsFound is an ordered, append-only set.
func (m *MemoryResult) AddPath(path string) {
	for _, p := range m.PathsFound {
		if p == path {
			return
		}
	}
	m.PathsFound = append(m.PathsFound, path)
}

// MergePaths unions another result's paths into this one, preserving order.
func (m *MemoryResult) MergePaths(other *MemoryResult) {
	for _, p := range other.PathsFound {
		m.AddPath(p)
	}
}

// ClampScore bounds a combined score to [0, 1].
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
