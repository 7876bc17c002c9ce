package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DeleteInput defines the input for the delete_memory tool.
type DeleteInput struct {
	ID string `json:"id" jsonschema:"The memory ID to delete"`
}

// DeleteOutput defines the output for the delete_memory tool.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteTool returns the tool definition for delete_memory.
func DeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "delete_memory",
		Description: "Delete a memory (episodic or semantic) by ID. All edges touching it are removed; a deleted episodic memory splits its session chain rather than re-bridging neighbors.",
	}
}

// HandleDelete handles the delete_memory tool call.
func (h *Handler) HandleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	h.Logger.Info("delete_memory", "id", input.ID)

	if err := h.Service.DeleteMemory(ctx, input.ID); err != nil {
		h.Logger.Error("delete_memory failed", "id", input.ID, "error", err)
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete memory: %w", err)
	}

	h.Logger.Info("delete_memory complete", "id", input.ID)
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}
