package domain

import "time"

// Node labels used in the memory graph.
const (
	LabelExperience = "Experience"
	LabelEntity     = "Entity"
)

// Edge relationship types.
const (
	RelMentions      = "MENTIONS"
	RelBelongsTo     = "BELONGS_TO"
	RelCauses        = "CAUSES"
	RelConflictsWith = "CONFLICTS_WITH"
	RelSupports      = "SUPPORTS"
)

// GraphNode is a property-graph node. Experience nodes carry Content,
// AgentID and MemoryType; Entity nodes carry Name and EntityType. The
// traversal layer treats any node with both content and an agent id as
// a memory record.
type GraphNode struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Content    string     `json:"content,omitempty"`
	AgentID    string     `json:"agent_id,omitempty"`
	MemoryType string     `json:"memory_type,omitempty"`
	SessionID  string     `json:"session_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	EntityType string     `json:"entity_type,omitempty"`
	Confidence float64    `json:"confidence"`
	Importance float64    `json:"importance"`
	Embedding  []float32  `json:"-"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// IsMemoryRecord reports whether the node looks like a stored memory
// rather than an entity or other auxiliary node.
func (n *GraphNode) IsMemoryRecord() bool {
	return n.Content != "" && n.AgentID != ""
}

// GraphEdge is a generic relationship between two nodes.
type GraphEdge struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	RelType   string    `json:"rel_type"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoredNode pairs a node with a vector-search similarity.
type ScoredNode struct {
	Node       GraphNode
	Similarity float64
}

// TraversalHit is one node reached by a bounded traversal. Path holds the
// relationship types walked to reach it; PathStrength is the product of the
// traversed edge weights.
type TraversalHit struct {
	Node         GraphNode
	Path         []string
	PathStrength float64
}
