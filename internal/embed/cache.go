package embed

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
)

// Cached is a read-through embedding cache. Repeated embeds of the same text
// are common: context assembly re-embeds recent session content on every
// call, and extraction dedup re-embeds candidate descriptions.
type Cached struct {
	inner memory.EmbeddingProvider
	cache *ristretto.Cache
}

// NewCached wraps an embedding provider with an in-process cache holding
// roughly maxEntries vectors.
func NewCached(inner memory.EmbeddingProvider, maxEntries int64) (*Cached, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Embed returns a cached vector when available, consulting the inner provider
// on a miss. Errors are never cached.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			out := make([]float32, len(vec))
			copy(out, vec)
			return out, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	stored := make([]float32, len(vec))
	copy(stored, vec)
	c.cache.Set(text, stored, 1)
	return vec, nil
}

// Dimensions returns the inner provider's embedding size.
func (c *Cached) Dimensions() int {
	return c.inner.Dimensions()
}

// Wait flushes pending cache writes. Useful in tests; production callers
// never need it.
func (c *Cached) Wait() {
	c.cache.Wait()
}

// Close releases cache resources.
func (c *Cached) Close() {
	c.cache.Close()
}
