package memory

import (
	"errors"
	"fmt"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// Common errors returned by memory operations.
var (
	// ErrNotFound is returned when a memory or relationship target does not
	// exist for the requesting user. Never retried.
	ErrNotFound = errors.New("memory: not found")

	// ErrStoreUnavailable is returned when the graph or vector backend stays
	// unreachable after the retry budget is exhausted.
	ErrStoreUnavailable = errors.New("memory: store unavailable")

	// ErrEmbeddingUnavailable is returned when the embedding backend is
	// unreachable.
	ErrEmbeddingUnavailable = errors.New("memory: embedding unavailable")
)

// ExtractionError marks a pipeline run that aborted mid-batch. The partial
// counts are preserved; already-persisted concepts are not rolled back.
type ExtractionError struct {
	State   models.ExtractionState
	Partial models.ExtractionResult
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed during %s: %v", e.State, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
