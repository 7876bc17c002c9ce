package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// SearchInput defines the input for the search_memories tool.
type SearchInput struct {
	UserID string `json:"user_id" jsonschema:"The user whose memories to search"`
	Type   string `json:"type,omitempty" jsonschema:"Which store to search: episodic, semantic, or both (default both)"`

	// Episodic filters
	SessionID     string   `json:"session_id,omitempty" jsonschema:"Restrict episodic results to one session"`
	After         string   `json:"after,omitempty" jsonschema:"RFC3339 lower bound on event time"`
	Before        string   `json:"before,omitempty" jsonschema:"RFC3339 upper bound on event time"`
	Tags          []string `json:"tags,omitempty" jsonschema:"Episodic tag filter; a memory matches if it carries any listed tag"`
	MinImportance float64  `json:"min_importance,omitempty" jsonschema:"Minimum episodic importance"`
	MaxImportance float64  `json:"max_importance,omitempty" jsonschema:"Maximum episodic importance (0 means unbounded)"`

	// Semantic filters
	Query      string   `json:"query,omitempty" jsonschema:"Text to embed for semantic similarity search (required for semantic and both)"`
	Categories []string `json:"categories,omitempty" jsonschema:"Restrict semantic results to these categories"`
	Threshold  *float64 `json:"threshold,omitempty" jsonschema:"Minimum cosine similarity; omit for the configured default"`

	Limit int `json:"limit,omitempty" jsonschema:"Maximum results per store"`
}

// SearchOutput defines the output for the search_memories tool.
// SemanticScores runs parallel to Semantic; episodic results carry no scores.
type SearchOutput struct {
	Episodic       []EpisodicItem `json:"episodic,omitempty"`
	Semantic       []SemanticItem `json:"semantic,omitempty"`
	SemanticScores []float32      `json:"semantic_scores,omitempty"`
	Degraded       bool           `json:"degraded,omitempty"`
}

// SearchTool returns the tool definition for search_memories.
func SearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_memories",
		Description: "Search a user's memories. Episodic search filters events by session, time range, tags and importance; semantic search embeds the query text and returns concepts above a similarity threshold with parallel scores. type=both runs the two searches together and requires a query. When type is omitted it defaults to both if a query is given, episodic otherwise. degraded=true means the semantic half was skipped because the vector index or embedding backend was unreachable.",
	}
}

// HandleSearch handles the search_memories tool call.
func (h *Handler) HandleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	h.Logger.Info("search_memories", "user_id", input.UserID, "type", input.Type, "query", input.Query)

	// Default to combined search when there is a query text to embed,
	// otherwise a pure episodic filter.
	searchType := models.SearchType(input.Type)
	if searchType == "" {
		if input.Query != "" {
			searchType = models.SearchBoth
		} else {
			searchType = models.SearchEpisodic
		}
	}

	after, err := parseTime(input.After)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("invalid after: %w", err)
	}
	before, err := parseTime(input.Before)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("invalid before: %w", err)
	}

	request := models.SearchRequest{Type: searchType}
	if searchType == models.SearchEpisodic || searchType == models.SearchBoth {
		eq := &models.EpisodicQuery{
			UserID:    input.UserID,
			SessionID: input.SessionID,
			Tags:      input.Tags,
			Limit:     input.Limit,
		}
		if !after.IsZero() || !before.IsZero() {
			eq.TimeRange = &models.TimeRange{After: after, Before: before}
		}
		if input.MinImportance > 0 || input.MaxImportance > 0 {
			eq.Importance = &models.ImportanceRange{Min: input.MinImportance, Max: input.MaxImportance}
		}
		request.Episodic = eq
	}
	if searchType == models.SearchSemantic || searchType == models.SearchBoth {
		sq := &models.SemanticQuery{
			UserID:     input.UserID,
			Query:      input.Query,
			Categories: input.Categories,
			Limit:      input.Limit,
		}
		if input.Threshold != nil {
			threshold := float32(*input.Threshold)
			sq.Threshold = &threshold
		}
		request.Semantic = sq
	}

	result, err := h.Service.SearchMemories(ctx, request)
	if err != nil {
		h.Logger.Error("search_memories failed", "user_id", input.UserID, "error", err)
		return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
	}

	output := SearchOutput{
		Episodic:       episodicItems(result.Episodic),
		Semantic:       semanticItems(result.Semantic),
		SemanticScores: result.SemanticScores,
		Degraded:       result.Degraded,
	}

	h.Logger.Info("search_memories complete", "episodic", len(output.Episodic), "semantic", len(output.Semantic), "degraded", output.Degraded)
	return nil, output, nil
}
