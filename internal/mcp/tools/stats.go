package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatsInput defines the input for the get_memory_stats tool.
type StatsInput struct {
	UserID string `json:"user_id" jsonschema:"The user to report counts for"`
}

// StatsOutput defines the output for the get_memory_stats tool.
type StatsOutput struct {
	UserID        string `json:"user_id"`
	EpisodicCount int    `json:"episodic_count"`
	SemanticCount int    `json:"semantic_count"`
	PendingIndex  int    `json:"pending_index"`
}

// StatsTool returns the tool definition for get_memory_stats.
func StatsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_memory_stats",
		Description: "Report per-user memory counts: episodic, semantic, and how many semantic memories are still waiting to enter the vector index.",
	}
}

// HandleStats handles the get_memory_stats tool call.
func (h *Handler) HandleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	h.Logger.Info("get_memory_stats", "user_id", input.UserID)

	stats, err := h.Service.GetMemoryStats(ctx, input.UserID)
	if err != nil {
		h.Logger.Error("get_memory_stats failed", "user_id", input.UserID, "error", err)
		return nil, StatsOutput{}, fmt.Errorf("failed to get memory stats: %w", err)
	}

	return nil, StatsOutput{
		UserID:        stats.UserID,
		EpisodicCount: stats.EpisodicCount,
		SemanticCount: stats.SemanticCount,
		PendingIndex:  stats.PendingIndex,
	}, nil
}
