package models

import "time"

// TimeRange bounds an episodic query. Zero values mean unbounded.
type TimeRange struct {
	After  time.Time `json:"after,omitempty"`
	Before time.Time `json:"before,omitempty"`
}

// ImportanceRange filters episodic memories by importance. Max of zero means
// no upper bound.
type ImportanceRange struct {
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// EpisodicQuery is a graph-side filter over episodic memories. UserID is
// required; everything else narrows the result set. Tags are any-match.
type EpisodicQuery struct {
	UserID     string           `json:"user_id"`
	SessionID  string           `json:"session_id,omitempty"`
	TimeRange  *TimeRange       `json:"time_range,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	Importance *ImportanceRange `json:"importance,omitempty"`
	Limit      int              `json:"limit,omitempty"`
}

// SemanticQuery is a similarity search over semantic memories. Query is the
// text to embed; a nil Threshold uses the configured default, so zero and
// negative cosine thresholds stay expressible.
type SemanticQuery struct {
	UserID     string   `json:"user_id"`
	Query      string   `json:"query"`
	Categories []string `json:"categories,omitempty"`
	Threshold  *float32 `json:"threshold,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// SearchType selects which stores a SearchRequest hits.
type SearchType string

const (
	SearchEpisodic SearchType = "episodic"
	SearchSemantic SearchType = "semantic"
	SearchBoth     SearchType = "both"
)

// SearchRequest is the façade-level search operation.
type SearchRequest struct {
	Type     SearchType     `json:"type"`
	Episodic *EpisodicQuery `json:"episodic,omitempty"`
	Semantic *SemanticQuery `json:"semantic,omitempty"`
}

// SemanticSearchResult pairs semantic matches with their similarity scores.
// Degraded is set when the vector store or embedding backend was unreachable
// and the semantic half was skipped rather than failing the call.
type SemanticSearchResult struct {
	Memories []SemanticMemory `json:"memories"`
	Scores   []float32        `json:"scores"`
	Degraded bool             `json:"degraded,omitempty"`
}

// MemorySearchResult carries both result sets with parallel score arrays.
// Episodic and semantic scores are different scales and are never interleaved
// into a single ranking; callers weight them as needed.
type MemorySearchResult struct {
	Episodic       []EpisodicMemory `json:"episodic,omitempty"`
	Semantic       []SemanticMemory `json:"semantic,omitempty"`
	SemanticScores []float32        `json:"semantic_scores,omitempty"`
	Degraded       bool             `json:"degraded,omitempty"`
}

// RelatedMemory is a semantic memory reached by typed-edge traversal,
// annotated with how it was reached.
type RelatedMemory struct {
	Memory       SemanticMemory `json:"memory"`
	RelationType RelationType   `json:"relationship_type"`
	Direction    string         `json:"direction"` // "incoming" or "outgoing"
	Depth        int            `json:"depth"`
}
