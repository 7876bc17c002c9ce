package memory

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// ContextAssembler builds the ephemeral working set handed to an agent at the
// start of a turn: recent session events plus the concepts most similar to
// what those events talk about. Nothing it produces is persisted or cached;
// every call reflects current store state.
type ContextAssembler struct {
	repo   *Repository
	search *SearchEngine
	opts   Options
	logger *slog.Logger
}

// NewContextAssembler creates a context assembler over the shared repository
// and search engine.
func NewContextAssembler(repo *Repository, search *SearchEngine, logger *slog.Logger) *ContextAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextAssembler{
		repo:   repo,
		search: search,
		opts:   repo.Options(),
		logger: logger,
	}
}

// GetMemoryContext assembles the context window for a user/session. The
// semantic half is seeded from the most recent episodic contents; with no
// episodic history it is skipped entirely.
func (a *ContextAssembler) GetMemoryContext(ctx context.Context, userID, sessionID string) (*models.MemoryContext, error) {
	return a.assemble(ctx, userID, sessionID, "")
}

// EnhanceContext assembles a context window seeded by an incoming message
// instead of recent history, so the semantic half tracks what the user is
// about to discuss.
func (a *ContextAssembler) EnhanceContext(ctx context.Context, userID, sessionID, message string) (*models.MemoryContext, error) {
	if message == "" {
		return nil, &models.ValidationError{Field: "message", Message: "is required"}
	}
	return a.assemble(ctx, userID, sessionID, message)
}

func (a *ContextAssembler) assemble(ctx context.Context, userID, sessionID, seed string) (*models.MemoryContext, error) {
	if userID == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "is required"}
	}

	episodic, err := a.search.SearchEpisodic(ctx, models.EpisodicQuery{
		UserID:    userID,
		SessionID: sessionID,
		Limit:     a.opts.EpisodicLimit,
	})
	if err != nil {
		return nil, err
	}

	mc := &models.MemoryContext{
		UserID:    userID,
		SessionID: sessionID,
		Episodic:  episodic,
	}

	if seed == "" {
		seed = a.seedFromEpisodic(episodic)
	}
	if seed != "" {
		semantic, err := a.search.SearchSemantic(ctx, models.SemanticQuery{
			UserID: userID,
			Query:  seed,
			Limit:  a.opts.SemanticLimit,
		})
		if err != nil {
			return nil, err
		}
		mc.Semantic = semantic.Memories
		mc.SemanticScores = semantic.Scores
		mc.Degraded = semantic.Degraded
	}

	mc.Window = a.windowFor(mc)
	return mc, nil
}

// seedFromEpisodic joins the newest few episodic contents into one query
// string. Results arrive newest first, so the head of the slice is the seed.
func (a *ContextAssembler) seedFromEpisodic(episodic []models.EpisodicMemory) string {
	n := a.opts.ContextSeedCount
	if n > len(episodic) {
		n = len(episodic)
	}
	parts := make([]string, 0, n)
	for _, m := range episodic[:n] {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// windowFor computes the time span and aggregate relevance of an assembled
// context. Relevance blends mean episodic recency, decayed exponentially with
// the configured time constant, with mean semantic similarity. A missing half
// contributes zero rather than re-normalizing the weights.
func (a *ContextAssembler) windowFor(mc *models.MemoryContext) models.ContextWindow {
	var window models.ContextWindow
	now := time.Now().UTC()

	if len(mc.Episodic) > 0 {
		window.Start = mc.Episodic[0].Timestamp
		window.End = mc.Episodic[0].Timestamp
		var recencySum float64
		for _, m := range mc.Episodic {
			if m.Timestamp.Before(window.Start) {
				window.Start = m.Timestamp
			}
			if m.Timestamp.After(window.End) {
				window.End = m.Timestamp
			}
			age := now.Sub(m.Timestamp)
			if age < 0 {
				age = 0
			}
			recencySum += math.Exp(-age.Seconds() / a.opts.RecencyDecay.Seconds())
		}
		window.RelevanceScore += a.opts.RecencyWeight * recencySum / float64(len(mc.Episodic))
	}

	if len(mc.SemanticScores) > 0 {
		var simSum float64
		for _, s := range mc.SemanticScores {
			simSum += float64(s)
		}
		window.RelevanceScore += a.opts.SemanticWeight * simSum / float64(len(mc.SemanticScores))
	}

	return window
}
