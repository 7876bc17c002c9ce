package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

type searchEnv struct {
	*testEnv
	search *SearchEngine
}

func newSearchEnv(t *testing.T) *searchEnv {
	t.Helper()
	env := newTestEnv(t)
	return &searchEnv{
		testEnv: env,
		search:  NewSearchEngine(env.repo, env.vector, env.embedder, testLogger()),
	}
}

func TestSearchEpisodicFiltersByTag(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	e1 := episodicFixture("u1", "s1", "deployed the service")
	e1.Metadata.Tags = []string{"work", "deploy"}
	if _, err := env.repo.StoreEpisodic(ctx, e1); err != nil {
		t.Fatalf("store e1: %v", err)
	}
	e2 := episodicFixture("u1", "s1", "went for a run")
	e2.Metadata.Tags = []string{"personal"}
	if _, err := env.repo.StoreEpisodic(ctx, e2); err != nil {
		t.Fatalf("store e2: %v", err)
	}

	got, err := env.search.SearchEpisodic(ctx, models.EpisodicQuery{
		UserID: "u1",
		Tags:   []string{"work"},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Content != "deployed the service" {
		t.Fatalf("got %d results, want only the work-tagged one", len(got))
	}
}

func TestSearchEpisodicFiltersByTimeAndImportance(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := episodicFixture("u1", "s1", "old event")
	old.Timestamp = now.Add(-48 * time.Hour)
	old.Metadata.Importance = 0.9
	if _, err := env.repo.StoreEpisodic(ctx, old); err != nil {
		t.Fatalf("store old: %v", err)
	}
	recent := episodicFixture("u1", "s1", "recent event")
	recent.Timestamp = now.Add(-time.Hour)
	recent.Metadata.Importance = 0.2
	if _, err := env.repo.StoreEpisodic(ctx, recent); err != nil {
		t.Fatalf("store recent: %v", err)
	}

	tests := []struct {
		name  string
		query models.EpisodicQuery
		want  string
	}{
		{
			name: "time range",
			query: models.EpisodicQuery{
				UserID:    "u1",
				TimeRange: &models.TimeRange{After: now.Add(-24 * time.Hour)},
			},
			want: "recent event",
		},
		{
			name: "importance floor",
			query: models.EpisodicQuery{
				UserID:     "u1",
				Importance: &models.ImportanceRange{Min: 0.5},
			},
			want: "old event",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.search.SearchEpisodic(ctx, tt.query)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != 1 || got[0].Content != tt.want {
				t.Fatalf("got %v, want only %q", len(got), tt.want)
			}
		})
	}
}

func TestSearchSemanticThresholdMonotonicity(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	// Pin vectors so similarity to the query is exact.
	env.embedder.pin("query", []float32{1, 0, 0, 0, 0, 0, 0, 0})
	env.embedder.pin("near", []float32{1, 0.2, 0, 0, 0, 0, 0, 0})
	env.embedder.pin("far", []float32{0.5, 1, 0, 0, 0, 0, 0, 0})

	for _, desc := range []string{"near", "far"} {
		if _, _, err := env.repo.StoreSemantic(ctx, semanticFixture("u1", desc, desc)); err != nil {
			t.Fatalf("store %s: %v", desc, err)
		}
	}

	loose, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID: "u1", Query: "query", Threshold: threshold(0.4),
	})
	if err != nil {
		t.Fatalf("loose search: %v", err)
	}
	strict, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID: "u1", Query: "query", Threshold: threshold(0.9),
	})
	if err != nil {
		t.Fatalf("strict search: %v", err)
	}

	if len(strict.Memories) > len(loose.Memories) {
		t.Fatalf("raising threshold grew results: %d > %d", len(strict.Memories), len(loose.Memories))
	}
	strictIDs := make(map[string]bool)
	for _, m := range strict.Memories {
		strictIDs[m.ID] = true
	}
	looseIDs := make(map[string]bool)
	for _, m := range loose.Memories {
		looseIDs[m.ID] = true
	}
	for id := range strictIDs {
		if !looseIDs[id] {
			t.Errorf("strict result %s missing from loose results", id)
		}
	}
	if len(loose.Memories) != 2 || len(strict.Memories) != 1 {
		t.Errorf("loose=%d strict=%d, want 2 and 1", len(loose.Memories), len(strict.Memories))
	}
}

func TestSearchSemanticZeroThresholdIsNotDefaulted(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	// Orthogonal to the query, so similarity is exactly zero.
	env.embedder.pin("query text", []float32{1, 0, 0, 0, 0, 0, 0, 0})
	env.embedder.pin("unrelated concept", []float32{0, 1, 0, 0, 0, 0, 0, 0})

	if _, _, err := env.repo.StoreSemantic(ctx, semanticFixture("u1", "unrelated", "unrelated concept")); err != nil {
		t.Fatalf("store: %v", err)
	}

	defaulted, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID: "u1", Query: "query text",
	})
	if err != nil {
		t.Fatalf("default search: %v", err)
	}
	if len(defaulted.Memories) != 0 {
		t.Fatalf("default threshold returned %d results, want 0", len(defaulted.Memories))
	}

	floor, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID: "u1", Query: "query text", Threshold: threshold(0),
	})
	if err != nil {
		t.Fatalf("zero-threshold search: %v", err)
	}
	if len(floor.Memories) != 1 {
		t.Fatalf("zero threshold returned %d results, want the orthogonal match", len(floor.Memories))
	}
}

func TestSearchSemanticMultiCategoryOverFetches(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	env.embedder.pin("query text", []float32{1, 0, 0, 0, 0, 0, 0, 0})
	env.embedder.pin("closest but off category", []float32{1, 0.1, 0, 0, 0, 0, 0, 0})
	env.embedder.pin("close and in category", []float32{1, 0.3, 0, 0, 0, 0, 0, 0})

	offCat := semanticFixture("u1", "hobby", "closest but off category")
	offCat.Category = "personal"
	if _, _, err := env.repo.StoreSemantic(ctx, offCat); err != nil {
		t.Fatalf("store off-category: %v", err)
	}
	inCat := semanticFixture("u1", "postgres", "close and in category")
	inCat.Category = "technology"
	if _, _, err := env.repo.StoreSemantic(ctx, inCat); err != nil {
		t.Fatalf("store in-category: %v", err)
	}

	// A limit-sized fetch would contain only the off-category top hit.
	got, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID:     "u1",
		Query:      "query text",
		Categories: []string{"technology", "science"},
		Threshold:  threshold(0.5),
		Limit:      1,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got.Memories) != 1 || got.Memories[0].Concept != "postgres" {
		t.Fatalf("got %+v, want the in-category match", got.Memories)
	}
}

func TestSearchSemanticScoresAreParallel(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	for _, c := range []string{"alpha", "beta", "gamma"} {
		if _, _, err := env.repo.StoreSemantic(ctx, semanticFixture("u1", c, c+" concept")); err != nil {
			t.Fatalf("store %s: %v", c, err)
		}
	}

	got, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID: "u1", Query: "alpha concept", Threshold: threshold(0.01),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got.Memories) != len(got.Scores) {
		t.Fatalf("memories (%d) and scores (%d) not parallel", len(got.Memories), len(got.Scores))
	}
	for i := 1; i < len(got.Scores); i++ {
		if got.Scores[i] > got.Scores[i-1] {
			t.Errorf("scores not descending at %d: %v", i, got.Scores)
		}
	}
}

func TestSearchSemanticVectorOutageIsDegradedNotFailed(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	if _, _, err := env.repo.StoreSemantic(ctx, semanticFixture("u1", "golang", "a language")); err != nil {
		t.Fatalf("store: %v", err)
	}
	env.vector.failAll = errors.New("vector store down")

	got, err := env.search.SearchSemantic(ctx, models.SemanticQuery{UserID: "u1", Query: "language"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !got.Degraded {
		t.Error("expected degraded result")
	}
	if len(got.Memories) != 0 {
		t.Errorf("got %d memories, want none", len(got.Memories))
	}
}

func TestSearchSemanticSkipsStaleVectorHits(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	m, _, err := env.repo.StoreSemantic(ctx, semanticFixture("u1", "golang", "a language"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	// Simulate a vector entry whose graph node is gone.
	if err := env.graph.DeleteNode(ctx, m.ID); err != nil {
		t.Fatalf("delete node: %v", err)
	}

	got, err := env.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID: "u1", Query: "a language", Threshold: threshold(0.01),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got.Memories) != 0 {
		t.Errorf("got %d memories, want stale hit skipped", len(got.Memories))
	}
}

func TestSearchBothKeepsResultSetsSeparate(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	if _, err := env.repo.StoreEpisodic(ctx, episodicFixture("u1", "s1", "wrote some go")); err != nil {
		t.Fatalf("store episodic: %v", err)
	}
	if _, _, err := env.repo.StoreSemantic(ctx, semanticFixture("u1", "golang", "a language")); err != nil {
		t.Fatalf("store semantic: %v", err)
	}

	got, err := env.search.Search(ctx, models.SearchRequest{
		Type:     models.SearchBoth,
		Episodic: &models.EpisodicQuery{UserID: "u1"},
		Semantic: &models.SemanticQuery{UserID: "u1", Query: "a language", Threshold: threshold(0.01)},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got.Episodic) != 1 {
		t.Errorf("episodic = %d, want 1", len(got.Episodic))
	}
	if len(got.Semantic) != 1 || len(got.SemanticScores) != 1 {
		t.Errorf("semantic = %d scores = %d, want 1 and 1", len(got.Semantic), len(got.SemanticScores))
	}
}

func TestSearchBothDegradedSemanticKeepsEpisodic(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	if _, err := env.repo.StoreEpisodic(ctx, episodicFixture("u1", "s1", "event")); err != nil {
		t.Fatalf("store: %v", err)
	}
	env.vector.failAll = errors.New("vector store down")

	got, err := env.search.Search(ctx, models.SearchRequest{
		Type:     models.SearchBoth,
		Episodic: &models.EpisodicQuery{UserID: "u1"},
		Semantic: &models.SemanticQuery{UserID: "u1", Query: "anything"},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !got.Degraded {
		t.Error("expected degraded flag")
	}
	if len(got.Episodic) != 1 {
		t.Errorf("episodic = %d, want the graph half intact", len(got.Episodic))
	}
}

func TestSearchRejectsMalformedRequests(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SearchRequest
	}{
		{"unknown type", models.SearchRequest{Type: "fuzzy"}},
		{"episodic without query", models.SearchRequest{Type: models.SearchEpisodic}},
		{"semantic without query", models.SearchRequest{Type: models.SearchSemantic}},
		{"both with half missing", models.SearchRequest{Type: models.SearchBoth, Episodic: &models.EpisodicQuery{UserID: "u1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *models.ValidationError
			if _, err := env.search.Search(ctx, tt.req); !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}
