package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexInput defines the input for the reindex_pending_memories tool.
type ReindexInput struct {
	UserID string `json:"user_id" jsonschema:"The user whose pending memories to reindex"`
}

// ReindexOutput defines the output for the reindex_pending_memories tool.
type ReindexOutput struct {
	Reindexed int `json:"reindexed"`
}

// ReindexTool returns the tool definition for reindex_pending_memories.
func ReindexTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "reindex_pending_memories",
		Description: "Re-run vector indexing for semantic memories that were persisted while the vector index was unavailable, restoring them to similarity search.",
	}
}

// HandleReindex handles the reindex_pending_memories tool call.
func (h *Handler) HandleReindex(ctx context.Context, req *mcp.CallToolRequest, input ReindexInput) (*mcp.CallToolResult, ReindexOutput, error) {
	h.Logger.Info("reindex_pending_memories", "user_id", input.UserID)

	count, err := h.Service.ReindexPendingMemories(ctx, input.UserID)
	if err != nil {
		h.Logger.Error("reindex_pending_memories failed", "user_id", input.UserID, "error", err)
		return nil, ReindexOutput{}, fmt.Errorf("reindex failed: %w", err)
	}

	h.Logger.Info("reindex_pending_memories complete", "user_id", input.UserID, "reindexed", count)
	return nil, ReindexOutput{Reindexed: count}, nil
}
