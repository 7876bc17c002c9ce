package models

import (
	"fmt"
	"time"
)

// MemoryKind distinguishes the two persisted memory node types.
type MemoryKind string

const (
	KindEpisodic MemoryKind = "Episodic"
	KindSemantic MemoryKind = "Semantic"
)

// RelationType defines the type of relationship between memories.
type RelationType string

const (
	RelSimilar    RelationType = "SIMILAR"
	RelParent     RelationType = "PARENT"
	RelChildren   RelationType = "CHILDREN"
	RelRelated    RelationType = "RELATED"
	RelCauses     RelationType = "CAUSES"
	RelCausedBy   RelationType = "CAUSED_BY"
	RelPartOf     RelationType = "PART_OF"
	RelHasParts   RelationType = "HAS_PARTS"
	RelOpposite   RelationType = "OPPOSITE"
	RelInstanceOf RelationType = "INSTANCE_OF"

	// RelNextInSession is the temporal chain edge between episodic memories.
	// A single A->B edge encodes both A.next and B.previous.
	RelNextInSession RelationType = "NEXT_IN_SESSION"

	// RelDerivedFrom links an extracted semantic memory to its episodic sources.
	RelDerivedFrom RelationType = "DERIVED_FROM"
)

// SymmetricRelations are treated bidirectionally: writing A->B also writes B->A.
var SymmetricRelations = map[RelationType]bool{
	RelSimilar: true,
	RelRelated: true,
}

// InverseRelations maps each directed relation to its reverse-edge counterpart.
var InverseRelations = map[RelationType]RelationType{
	RelParent:   RelChildren,
	RelChildren: RelParent,
	RelCauses:   RelCausedBy,
	RelCausedBy: RelCauses,
	RelPartOf:   RelHasParts,
	RelHasParts: RelPartOf,
}

// SemanticRelationTypes is the set of edge types callers may attach to
// semantic memories.
var SemanticRelationTypes = map[RelationType]bool{
	RelSimilar:    true,
	RelParent:     true,
	RelChildren:   true,
	RelRelated:    true,
	RelCauses:     true,
	RelCausedBy:   true,
	RelPartOf:     true,
	RelHasParts:   true,
	RelOpposite:   true,
	RelInstanceOf: true,
}

// ValidateRelationType checks that a semantic relationship type is one of the
// known constants.
func ValidateRelationType(relType RelationType) error {
	if !SemanticRelationTypes[relType] {
		return fmt.Errorf("invalid relationship type: %q", relType)
	}
	return nil
}

// IndexState tracks whether a semantic memory's vector made it into the
// vector store.
type IndexState string

const (
	IndexStateIndexed IndexState = "indexed"
	IndexStatePending IndexState = "pending-index"
)

// EpisodicMetadata carries scoring and classification data for an event.
type EpisodicMetadata struct {
	Importance   float64  `json:"importance"`
	Tags         []string `json:"tags,omitempty"`
	Location     string   `json:"location,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

// EpisodicRelationships links an episodic memory into its session chain and
// to related memories. Previous/Next are maintained by the repository, never
// by callers.
type EpisodicRelationships struct {
	Previous string   `json:"previous,omitempty"`
	Next     string   `json:"next,omitempty"`
	Related  []string `json:"related,omitempty"`
}

// EpisodicMemory is a single observed event scoped to a user and session.
type EpisodicMemory struct {
	ID            string                `json:"id"`
	UserID        string                `json:"user_id"`
	SessionID     string                `json:"session_id"`
	Timestamp     time.Time             `json:"timestamp"`
	Content       string                `json:"content"`
	Context       map[string]any        `json:"context,omitempty"`
	Metadata      EpisodicMetadata      `json:"metadata"`
	Relationships EpisodicRelationships `json:"relationships"`
}

// Validate checks field constraints before a write.
func (m *EpisodicMemory) Validate() error {
	if m.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if m.Metadata.Importance < 0 || m.Metadata.Importance > 1 {
		return &ValidationError{Field: "metadata.importance", Message: "must be in [0,1]"}
	}
	return nil
}

// ExtractionMetadata is present only on semantic memories derived by the
// extraction pipeline.
type ExtractionMetadata struct {
	SourceMemoryIDs      []string      `json:"source_memory_ids"`
	ExtractionTimestamp  time.Time     `json:"extraction_timestamp"`
	ExtractionConfidence float64       `json:"extraction_confidence"`
	Keywords             []string      `json:"keywords,omitempty"`
	ProcessingTime       time.Duration `json:"processing_time"`
}

// SemanticMetadata carries confidence and access-tracking data for a concept.
type SemanticMetadata struct {
	Confidence   float64             `json:"confidence"`
	Source       string              `json:"source,omitempty"`
	LastAccessed time.Time           `json:"last_accessed"`
	AccessCount  int64               `json:"access_count"`
	Extraction   *ExtractionMetadata `json:"extraction_metadata,omitempty"`
}

// SemanticMemory is a distilled concept with an embedding of its description.
type SemanticMemory struct {
	ID            string                    `json:"id"`
	UserID        string                    `json:"user_id"`
	Concept       string                    `json:"concept"`
	Description   string                    `json:"description"`
	Vector        []float32                 `json:"vector,omitempty"`
	Category      string                    `json:"category,omitempty"`
	Metadata      SemanticMetadata          `json:"metadata"`
	Relationships map[RelationType][]string `json:"relationships,omitempty"`
	IndexState    IndexState                `json:"index_state"`
}

// Validate checks field constraints before a write. dimensions is the
// configured embedding size; a non-empty vector must match it exactly.
func (m *SemanticMemory) Validate(dimensions int) error {
	if m.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if m.Concept == "" {
		return &ValidationError{Field: "concept", Message: "must not be empty"}
	}
	if m.Metadata.Confidence < 0 || m.Metadata.Confidence > 1 {
		return &ValidationError{Field: "metadata.confidence", Message: "must be in [0,1]"}
	}
	if len(m.Vector) > 0 && dimensions > 0 && len(m.Vector) != dimensions {
		return &ValidationError{
			Field:   "vector",
			Message: fmt.Sprintf("dimension mismatch: got %d, want %d", len(m.Vector), dimensions),
		}
	}
	for relType := range m.Relationships {
		if err := ValidateRelationType(relType); err != nil {
			return &ValidationError{Field: "relationships", Message: err.Error()}
		}
	}
	return nil
}

// ValidationError reports an out-of-range or malformed field. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// ContextWindow summarizes the time span and aggregate relevance of an
// assembled memory context.
type ContextWindow struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	RelevanceScore float64   `json:"relevance_score"`
}

// MemoryContext is the ephemeral working set assembled for a user/session.
// It is built on demand and never persisted or cached.
type MemoryContext struct {
	UserID         string           `json:"user_id"`
	SessionID      string           `json:"session_id"`
	Episodic       []EpisodicMemory `json:"episodic"`
	Semantic       []SemanticMemory `json:"semantic"`
	SemanticScores []float32        `json:"semantic_scores,omitempty"`
	Window         ContextWindow    `json:"context_window"`
	Degraded       bool             `json:"degraded,omitempty"`
}

// MemoryStats reports per-user memory counts.
type MemoryStats struct {
	UserID        string `json:"user_id"`
	EpisodicCount int    `json:"episodic_count"`
	SemanticCount int    `json:"semantic_count"`
	PendingIndex  int    `json:"pending_index"`
}

// ClearResult reports the outcome of a best-effort cascading delete.
type ClearResult struct {
	EpisodicDeleted int `json:"episodic_deleted"`
	SemanticDeleted int `json:"semantic_deleted"`
	Failures        int `json:"failures"`
}
