package memory

import (
	"context"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// Node is a persisted memory node as the graph store sees it: a kind plus an
// open property bag. The repository owns the mapping between domain structs
// and fields.
type Node struct {
	ID     string
	Kind   models.MemoryKind
	Fields map[string]any
}

// Edge is a typed, directed relationship between two nodes.
type Edge struct {
	FromID string
	ToID   string
	Type   models.RelationType
}

// QuerySpec is a graph-side filter. UserID is always required; zero values
// for the remaining fields mean "no constraint". Results are ordered by
// timestamp descending and bounded by Limit.
type QuerySpec struct {
	Kind          models.MemoryKind
	UserID        string
	SessionID     string
	After         time.Time
	Before        time.Time
	Tags          []string // any-match
	MinImportance float64
	MaxImportance float64 // 0 means unbounded
	Category      string
	IndexState    models.IndexState
	// WithoutIncomingEdge restricts to nodes with no incoming edge of the
	// given type. Used to collect episodic memories not yet consumed by
	// extraction.
	WithoutIncomingEdge models.RelationType
	Limit               int
}

// GraphStore persists memory nodes and typed relationships. Implementations
// must scope every operation by the user id carried in node fields and must
// support cascading edge removal. The core treats the graph as the source of
// truth.
type GraphStore interface {
	CreateNode(ctx context.Context, node Node) error
	UpdateNode(ctx context.Context, id string, fields map[string]any) error
	// DeleteNode removes the node and every edge attached to it.
	DeleteNode(ctx context.Context, id string) error
	// GetNode returns ErrNotFound when no node has the given id.
	GetNode(ctx context.Context, id string) (*Node, error)

	CreateEdge(ctx context.Context, edge Edge) error
	DeleteEdge(ctx context.Context, edge Edge) error
	// DeleteEdgesTo removes all edges pointing at the given node.
	DeleteEdgesTo(ctx context.Context, id string) error
	// EdgesOf returns all edges touching the node, in both directions.
	EdgesOf(ctx context.Context, id string) ([]Edge, error)

	Query(ctx context.Context, spec QuerySpec) ([]Node, error)
	Count(ctx context.Context, kind models.MemoryKind, userID string) (int, error)
}

// VectorMatch is one nearest-neighbor hit.
type VectorMatch struct {
	ID    string
	Score float32
}

// VectorStore persists one vector per semantic memory and answers
// similarity-bounded nearest-neighbor queries. It is a secondary, rebuildable
// index; callers tolerate its absence.
type VectorStore interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	Delete(ctx context.Context, id string) error
	// Query returns up to topK matches with similarity >= threshold,
	// restricted by the exact-match metadata filter, ordered by descending
	// similarity.
	Query(ctx context.Context, vector []float32, topK int, filter map[string]string, threshold float32) ([]VectorMatch, error)
}

// EmbeddingProvider maps text to a fixed-dimension vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ConceptExtractor is the reasoning collaborator used by the extraction
// pipeline to derive concept candidates from a batch of episodic memories.
type ConceptExtractor interface {
	ExtractConcepts(ctx context.Context, batch []models.EpisodicMemory) ([]models.ConceptCandidate, error)
}
