// Package chromem implements the vector index on chromem-go, an embedded
// pure-Go vector database. Each user gets their own collection for namespace
// isolation. The index is secondary storage: it can be dropped and rebuilt
// from the graph at any time.
package chromem

import (
	"context"
	"fmt"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
)

const userKey = "user_id"

// Store wraps chromem-go behind the engine's vector store contract.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New creates an in-memory store.
func New() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// NewPersistent creates a store that persists collections under path.
func NewPersistent(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func (s *Store) collection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[userID]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[userID]; exists {
		return col, nil
	}

	name := "user_" + userID
	if userID == "" {
		name = "global"
	}
	// Embeddings are always supplied by the caller, so no embedding func.
	col, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.collections[userID] = col
	return col, nil
}

// Upsert writes one vector. The user id in the metadata routes the entry to
// its collection; writing an existing id replaces it.
func (s *Store) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	col, err := s.collection(metadata[userKey])
	if err != nil {
		return err
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	doc := chromem.Document{
		ID:        id,
		Embedding: vector,
		Metadata:  meta,
		// chromem requires non-empty content; the id is enough, the graph
		// holds the real data.
		Content: id,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Delete removes a vector entry. The contract carries no user id, so every
// collection is checked; ids are unique across users.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	cols := make([]*chromem.Collection, 0, len(s.collections))
	for _, col := range s.collections {
		cols = append(cols, col)
	}
	s.mu.RUnlock()

	for _, col := range cols {
		if err := col.Delete(ctx, nil, nil, id); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
	}
	return nil
}

// Query runs a nearest-neighbor lookup bounded by similarity threshold.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter map[string]string, threshold float32) ([]memory.VectorMatch, error) {
	col, err := s.collection(filter[userKey])
	if err != nil {
		return nil, err
	}

	where := make(map[string]string)
	for k, v := range filter {
		if k != userKey {
			where[k] = v
		}
	}
	if len(where) == 0 {
		where = nil
	}

	// chromem requires nResults <= collection size; shrink until it fits.
	var results []chromem.Result
	for limit := topK; limit >= 1; limit-- {
		results, err = col.QueryEmbedding(ctx, vector, limit, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("vector query: %w", err)
	}

	var matches []memory.VectorMatch
	for _, r := range results {
		if r.Similarity < threshold {
			continue
		}
		matches = append(matches, memory.VectorMatch{ID: r.ID, Score: r.Similarity})
	}
	return matches, nil
}

func isInsufficientDocsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "nResults")
}
