package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// Mock is a deterministic embedder for offline runs and tests. It hashes the
// text and expands the hash with an LCG into a unit vector, so equal texts
// always embed identically and no network is involved.
type Mock struct {
	dimensions int
}

// NewMock creates a mock embedder with the given dimensions.
func NewMock(dimensions int) *Mock {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Mock{dimensions: dimensions}
}

// Embed creates a deterministic embedding from text.
func (m *Mock) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, m.dimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

// Dimensions returns the embedding size.
func (m *Mock) Dimensions() int {
	return m.dimensions
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}
