package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// SearchEngine answers episodic filter queries against the graph and semantic
// similarity queries against the vector index, hydrating vector hits from the
// graph so results always reflect the source of truth.
type SearchEngine struct {
	repo     *Repository
	vector   VectorStore
	embedder EmbeddingProvider
	opts     Options
	logger   *slog.Logger
}

// NewSearchEngine creates a search engine sharing the repository's stores.
func NewSearchEngine(repo *Repository, vector VectorStore, embedder EmbeddingProvider, logger *slog.Logger) *SearchEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchEngine{
		repo:     repo,
		vector:   vector,
		embedder: embedder,
		opts:     repo.Options(),
		logger:   logger,
	}
}

// SearchEpisodic filters episodic memories graph-side, newest first.
func (s *SearchEngine) SearchEpisodic(ctx context.Context, q models.EpisodicQuery) ([]models.EpisodicMemory, error) {
	if q.UserID == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "is required"}
	}
	spec := QuerySpec{
		UserID:    q.UserID,
		SessionID: q.SessionID,
		Tags:      q.Tags,
		Limit:     q.Limit,
	}
	if spec.Limit <= 0 {
		spec.Limit = s.opts.EpisodicLimit
	}
	if q.TimeRange != nil {
		spec.After = q.TimeRange.After
		spec.Before = q.TimeRange.Before
	}
	if q.Importance != nil {
		spec.MinImportance = q.Importance.Min
		spec.MaxImportance = q.Importance.Max
	}
	return s.repo.QueryEpisodic(ctx, spec)
}

// SearchSemantic embeds the query text and runs a threshold-bounded
// nearest-neighbor lookup, then hydrates hits from the graph. A vector store
// or embedding outage yields an empty degraded result instead of an error.
func (s *SearchEngine) SearchSemantic(ctx context.Context, q models.SemanticQuery) (*models.SemanticSearchResult, error) {
	if q.UserID == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "is required"}
	}
	if q.Query == "" {
		return nil, &models.ValidationError{Field: "query", Message: "is required"}
	}
	threshold := s.opts.SearchThreshold
	if q.Threshold != nil {
		threshold = *q.Threshold
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.opts.SemanticLimit
	}

	vec, err := s.embedder.Embed(ctx, q.Query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("semantic search degraded: embedding unavailable", "user_id", q.UserID, "error", err)
		return &models.SemanticSearchResult{Degraded: true}, nil
	}

	filter := map[string]string{fieldUserID: q.UserID}
	fetch := limit
	if len(q.Categories) == 1 {
		filter[fieldCategory] = q.Categories[0]
	} else if len(q.Categories) > 1 {
		// The category filter is applied after the fetch, so over-fetch to
		// keep off-category neighbors from crowding out the limit.
		fetch = limit * len(q.Categories)
	}

	var matches []VectorMatch
	if err := s.opts.Retry.Do(ctx, func(ctx context.Context) error {
		var qerr error
		matches, qerr = s.vector.Query(ctx, vec, fetch, filter, threshold)
		return qerr
	}); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("semantic search degraded: vector store unavailable", "user_id", q.UserID, "error", err)
		return &models.SemanticSearchResult{Degraded: true}, nil
	}

	result := &models.SemanticSearchResult{}
	for _, match := range matches {
		m, err := s.repo.GetSemantic(ctx, match.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Stale vector entry for a deleted memory; skip it.
				s.logger.Debug("skipping stale vector hit", "id", match.ID)
				continue
			}
			return nil, fmt.Errorf("hydrate semantic match %s: %w", match.ID, err)
		}
		if len(q.Categories) > 1 && !containsString(q.Categories, m.Category) {
			continue
		}
		result.Memories = append(result.Memories, *m)
		result.Scores = append(result.Scores, match.Score)
		if len(result.Memories) == limit {
			break
		}
	}
	return result, nil
}

// Search dispatches a façade-level request. "both" runs the two halves
// concurrently and reports their results side by side; the score scales
// differ, so they are never merged into one ranking.
func (s *SearchEngine) Search(ctx context.Context, req models.SearchRequest) (*models.MemorySearchResult, error) {
	result := &models.MemorySearchResult{}

	switch req.Type {
	case models.SearchEpisodic:
		if req.Episodic == nil {
			return nil, &models.ValidationError{Field: "episodic", Message: "query is required for episodic search"}
		}
		memories, err := s.SearchEpisodic(ctx, *req.Episodic)
		if err != nil {
			return nil, err
		}
		result.Episodic = memories

	case models.SearchSemantic:
		if req.Semantic == nil {
			return nil, &models.ValidationError{Field: "semantic", Message: "query is required for semantic search"}
		}
		semantic, err := s.SearchSemantic(ctx, *req.Semantic)
		if err != nil {
			return nil, err
		}
		result.Semantic = semantic.Memories
		result.SemanticScores = semantic.Scores
		result.Degraded = semantic.Degraded

	case models.SearchBoth:
		if req.Episodic == nil || req.Semantic == nil {
			return nil, &models.ValidationError{Field: "type", Message: "both queries are required for combined search"}
		}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			memories, err := s.SearchEpisodic(gctx, *req.Episodic)
			if err != nil {
				return err
			}
			result.Episodic = memories
			return nil
		})
		g.Go(func() error {
			semantic, err := s.SearchSemantic(gctx, *req.Semantic)
			if err != nil {
				return err
			}
			result.Semantic = semantic.Memories
			result.SemanticScores = semantic.Scores
			result.Degraded = semantic.Degraded
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

	default:
		return nil, &models.ValidationError{Field: "type", Message: fmt.Sprintf("unknown search type %q", req.Type)}
	}

	return result, nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
