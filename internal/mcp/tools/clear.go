package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClearInput defines the input for the clear_user_memories tool.
type ClearInput struct {
	UserID string `json:"user_id" jsonschema:"The user whose memories to delete"`
}

// ClearOutput defines the output for the clear_user_memories tool.
type ClearOutput struct {
	EpisodicDeleted int `json:"episodic_deleted"`
	SemanticDeleted int `json:"semantic_deleted"`
	Failures        int `json:"failures"`
}

// ClearTool returns the tool definition for clear_user_memories.
func ClearTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "clear_user_memories",
		Description: "Delete all of a user's memories from both stores. The delete is best-effort: failures on individual memories are counted and reported rather than aborting the sweep.",
	}
}

// HandleClear handles the clear_user_memories tool call.
func (h *Handler) HandleClear(ctx context.Context, req *mcp.CallToolRequest, input ClearInput) (*mcp.CallToolResult, ClearOutput, error) {
	h.Logger.Info("clear_user_memories", "user_id", input.UserID)

	result, err := h.Service.ClearUserMemories(ctx, input.UserID)
	if err != nil {
		h.Logger.Error("clear_user_memories failed", "user_id", input.UserID, "error", err)
		return nil, ClearOutput{}, fmt.Errorf("failed to clear memories: %w", err)
	}

	h.Logger.Info("clear_user_memories complete", "user_id", input.UserID,
		"episodic_deleted", result.EpisodicDeleted, "semantic_deleted", result.SemanticDeleted, "failures", result.Failures)
	return nil, ClearOutput{
		EpisodicDeleted: result.EpisodicDeleted,
		SemanticDeleted: result.SemanticDeleted,
		Failures:        result.Failures,
	}, nil
}
