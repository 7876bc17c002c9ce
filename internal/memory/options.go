package memory

import (
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/retry"
)

// Options holds the engine's tunable policy values. Every threshold and
// weight named here is configuration, not a fixed law; DefaultOptions
// documents the chosen defaults.
type Options struct {
	// Dimensions is the embedding size, fixed per deployment. Every semantic
	// vector in the store must match it.
	Dimensions int

	// SearchThreshold is the minimum cosine similarity for semantic search
	// results (default 0.7).
	SearchThreshold float32

	// MergeThreshold is the similarity above which an extraction candidate is
	// merged into an existing concept instead of creating a duplicate
	// (default 0.9, deliberately higher than SearchThreshold).
	MergeThreshold float32

	// EpisodicLimit caps episodic search and context results (default 50).
	EpisodicLimit int

	// SemanticLimit caps semantic search results (default 10).
	SemanticLimit int

	// ContextSeedCount is how many recent episodic contents seed the semantic
	// half of a context window (default 5).
	ContextSeedCount int

	// RecencyWeight and SemanticWeight blend the context window's relevance
	// score (defaults 0.6 / 0.4).
	RecencyWeight  float64
	SemanticWeight float64

	// RecencyDecay is the exponential-decay time constant for episodic
	// recency scoring (default 6h).
	RecencyDecay time.Duration

	// BatchSize bounds one extraction run's episodic collection (default 20).
	BatchSize int

	// MaxConceptsPerMemory caps candidates retained per source memory
	// (default 3).
	MaxConceptsPerMemory int

	// MinConfidence drops extraction candidates below it (default 0.5).
	MinConfidence float64

	// Retry is the shared policy for store and collaborator calls.
	Retry retry.Policy
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Dimensions:           1536,
		SearchThreshold:      0.7,
		MergeThreshold:       0.9,
		EpisodicLimit:        50,
		SemanticLimit:        10,
		ContextSeedCount:     5,
		RecencyWeight:        0.6,
		SemanticWeight:       0.4,
		RecencyDecay:         6 * time.Hour,
		BatchSize:            20,
		MaxConceptsPerMemory: 3,
		MinConfidence:        0.5,
		Retry:                retry.DefaultPolicy(),
	}
}

// normalized fills zero values with defaults so partially constructed Options
// behave sensibly.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Dimensions == 0 {
		o.Dimensions = def.Dimensions
	}
	if o.SearchThreshold == 0 {
		o.SearchThreshold = def.SearchThreshold
	}
	if o.MergeThreshold == 0 {
		o.MergeThreshold = def.MergeThreshold
	}
	if o.EpisodicLimit == 0 {
		o.EpisodicLimit = def.EpisodicLimit
	}
	if o.SemanticLimit == 0 {
		o.SemanticLimit = def.SemanticLimit
	}
	if o.ContextSeedCount == 0 {
		o.ContextSeedCount = def.ContextSeedCount
	}
	if o.RecencyWeight == 0 && o.SemanticWeight == 0 {
		o.RecencyWeight = def.RecencyWeight
		o.SemanticWeight = def.SemanticWeight
	}
	if o.RecencyDecay == 0 {
		o.RecencyDecay = def.RecencyDecay
	}
	if o.BatchSize == 0 {
		o.BatchSize = def.BatchSize
	}
	if o.MaxConceptsPerMemory == 0 {
		o.MaxConceptsPerMemory = def.MaxConceptsPerMemory
	}
	if o.MinConfidence == 0 {
		o.MinConfidence = def.MinConfidence
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = def.Retry
	}
	return o
}
