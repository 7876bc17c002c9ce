package models

import "time"

// ExtractionState tracks the pipeline's position in a run.
type ExtractionState string

const (
	StateIdle          ExtractionState = "idle"
	StateCollecting    ExtractionState = "collecting"
	StateExtracting    ExtractionState = "extracting"
	StateDeduplicating ExtractionState = "deduplicating"
	StatePersisting    ExtractionState = "persisting"
	StateFailed        ExtractionState = "failed"
)

// ConceptCandidate is a candidate semantic concept produced by the reasoning
// collaborator for a single source episodic memory.
type ConceptCandidate struct {
	Concept        string              `json:"concept"`
	Description    string              `json:"description"`
	Category       string              `json:"category,omitempty"`
	Confidence     float64             `json:"confidence"`
	Keywords       []string            `json:"keywords,omitempty"`
	SourceMemoryID string              `json:"source_memory_id"`
	Relations      []CandidateRelation `json:"relations,omitempty"`
}

// CandidateRelation is a relationship between concepts discovered during
// extraction, named by concept label rather than id.
type CandidateRelation struct {
	TargetConcept string       `json:"target_concept"`
	Type          RelationType `json:"type"`
}

// ExtractionRequest scopes a pipeline run.
type ExtractionRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// ExtractionResult reports one pipeline run. On failure the counts reflect
// partial progress; already-persisted concepts are not rolled back.
type ExtractionResult struct {
	MemoriesProcessed    int           `json:"memories_processed"`
	ConceptsExtracted    int           `json:"concepts_extracted"`
	ConceptsMerged       int           `json:"concepts_merged"`
	RelationshipsCreated int           `json:"relationships_created"`
	ProcessingTime       time.Duration `json:"processing_time"`
}

// ExtractionStats is the cumulative view across runs.
type ExtractionStats struct {
	State                ExtractionState `json:"state"`
	TotalRuns            int             `json:"total_runs"`
	FailedRuns           int             `json:"failed_runs"`
	MemoriesProcessed    int             `json:"memories_processed"`
	ConceptsExtracted    int             `json:"concepts_extracted"`
	ConceptsMerged       int             `json:"concepts_merged"`
	RelationshipsCreated int             `json:"relationships_created"`
	LastRun              time.Time       `json:"last_run,omitempty"`
}
