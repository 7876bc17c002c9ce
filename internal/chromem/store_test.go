package chromem

import (
	"context"
	"testing"
)

func unit(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

func TestUpsertQueryRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	meta := map[string]string{"user_id": "u1"}
	if err := s.Upsert(ctx, "a", unit(4, 0), meta); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := s.Upsert(ctx, "b", unit(4, 1), meta); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	matches, err := s.Query(ctx, unit(4, 0), 10, map[string]string{"user_id": "u1"}, 0.9)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Fatalf("matches = %v, want only a", matches)
	}
	if matches[0].Score < 0.99 {
		t.Errorf("score = %v, want ~1", matches[0].Score)
	}
}

func TestQueryIsScopedPerUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, "mine", unit(4, 0), map[string]string{"user_id": "u1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, "theirs", unit(4, 0), map[string]string{"user_id": "u2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, unit(4, 0), 10, map[string]string{"user_id": "u1"}, 0.5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "mine" {
		t.Fatalf("matches = %v, want only this user's entry", matches)
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	s := New()

	matches, err := s.Query(context.Background(), unit(4, 0), 10, map[string]string{"user_id": "nobody"}, 0.5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %v, want none", matches)
	}
}

func TestQueryTopKLargerThanCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, "only", unit(4, 0), map[string]string{"user_id": "u1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, unit(4, 0), 50, map[string]string{"user_id": "u1"}, 0.5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, "a", unit(4, 0), map[string]string{"user_id": "u1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	matches, err := s.Query(ctx, unit(4, 0), 10, map[string]string{"user_id": "u1"}, 0.1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %v, want entry gone", matches)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := New()
	ctx := context.Background()
	meta := map[string]string{"user_id": "u1"}

	if err := s.Upsert(ctx, "a", unit(4, 0), meta); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, "a", unit(4, 1), meta); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	matches, err := s.Query(ctx, unit(4, 1), 10, meta, 0.9)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Fatalf("matches = %v, want replaced vector to win", matches)
	}
}

func TestCategoryFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, "tech", unit(4, 0), map[string]string{"user_id": "u1", "category": "technology"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, "food", unit(4, 0), map[string]string{"user_id": "u1", "category": "cooking"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := s.Query(ctx, unit(4, 0), 10, map[string]string{"user_id": "u1", "category": "technology"}, 0.5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "tech" {
		t.Fatalf("matches = %v, want only the technology entry", matches)
	}
}
