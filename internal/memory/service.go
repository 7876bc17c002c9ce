package memory

import (
	"context"
	"log/slog"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// Service is the single entry point callers use. It wires the repository,
// search engine, context assembler, and extraction pipeline together and
// delegates; it holds no logic of its own beyond construction.
type Service struct {
	repo      *Repository
	search    *SearchEngine
	assembler *ContextAssembler
	pipeline  *ExtractionPipeline
}

// NewService builds the full engine over the given stores and collaborators.
func NewService(graph GraphStore, vector VectorStore, embedder EmbeddingProvider, extractor ConceptExtractor, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	repo := NewRepository(graph, vector, embedder, opts, logger)
	search := NewSearchEngine(repo, vector, embedder, logger)
	return &Service{
		repo:      repo,
		search:    search,
		assembler: NewContextAssembler(repo, search, logger),
		pipeline:  NewExtractionPipeline(repo, search, extractor, logger),
	}
}

// StoreEpisodicMemory validates and persists an event, linking it into its
// session chain.
func (s *Service) StoreEpisodicMemory(ctx context.Context, m *models.EpisodicMemory) (*models.EpisodicMemory, error) {
	return s.repo.StoreEpisodic(ctx, m)
}

// GetEpisodicMemory retrieves an event with its chain links materialized.
func (s *Service) GetEpisodicMemory(ctx context.Context, id string) (*models.EpisodicMemory, error) {
	return s.repo.GetEpisodic(ctx, id)
}

// UpdateEpisodicMemory applies a partial update.
func (s *Service) UpdateEpisodicMemory(ctx context.Context, id string, patch EpisodicPatch) (*models.EpisodicMemory, error) {
	return s.repo.UpdateEpisodic(ctx, id, patch)
}

// StoreSemanticMemory persists a concept to both stores. The returned warning
// is non-empty when the memory landed in pending-index.
func (s *Service) StoreSemanticMemory(ctx context.Context, m *models.SemanticMemory) (*models.SemanticMemory, string, error) {
	return s.repo.StoreSemantic(ctx, m)
}

// GetSemanticMemory retrieves a concept, bumping its access tracking.
func (s *Service) GetSemanticMemory(ctx context.Context, id string) (*models.SemanticMemory, error) {
	return s.repo.GetSemantic(ctx, id)
}

// UpdateSemanticMemory applies a partial update, re-embedding on description
// change.
func (s *Service) UpdateSemanticMemory(ctx context.Context, id string, patch SemanticPatch) (*models.SemanticMemory, string, error) {
	return s.repo.UpdateSemantic(ctx, id, patch)
}

// DeleteMemory removes a memory of either kind along with every edge
// referencing it.
func (s *Service) DeleteMemory(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// SearchMemories dispatches an episodic, semantic, or combined search.
func (s *Service) SearchMemories(ctx context.Context, req models.SearchRequest) (*models.MemorySearchResult, error) {
	return s.search.Search(ctx, req)
}

// GetMemoryContext assembles the working set for a user/session.
func (s *Service) GetMemoryContext(ctx context.Context, userID, sessionID string) (*models.MemoryContext, error) {
	return s.assembler.GetMemoryContext(ctx, userID, sessionID)
}

// EnhanceContext assembles a working set seeded by an incoming message.
func (s *Service) EnhanceContext(ctx context.Context, userID, sessionID, message string) (*models.MemoryContext, error) {
	return s.assembler.EnhanceContext(ctx, userID, sessionID, message)
}

// GetRelatedMemories walks typed edges from a semantic memory.
func (s *Service) GetRelatedMemories(ctx context.Context, id string, relType models.RelationType, maxDepth int) ([]models.RelatedMemory, error) {
	return s.repo.Related(ctx, id, relType, maxDepth)
}

// ClearUserMemories deletes all of a user's memories, best-effort.
func (s *Service) ClearUserMemories(ctx context.Context, userID string) (*models.ClearResult, error) {
	return s.repo.ClearUserMemories(ctx, userID)
}

// GetMemoryStats reports per-user counts.
func (s *Service) GetMemoryStats(ctx context.Context, userID string) (*models.MemoryStats, error) {
	return s.repo.Stats(ctx, userID)
}

// ExtractSemanticFromEpisodic runs one extraction pass.
func (s *Service) ExtractSemanticFromEpisodic(ctx context.Context, req models.ExtractionRequest) (*models.ExtractionResult, error) {
	return s.pipeline.Run(ctx, req)
}

// GetSemanticExtractionStats reports cumulative pipeline counters.
func (s *Service) GetSemanticExtractionStats() models.ExtractionStats {
	return s.pipeline.Stats()
}

// ReindexPendingMemories retries vector writes for pending-index memories.
func (s *Service) ReindexPendingMemories(ctx context.Context, userID string) (int, error) {
	return s.repo.ReindexPending(ctx, userID)
}
