package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetEpisodicInput defines the input for the get_episodic_memory tool.
type GetEpisodicInput struct {
	ID string `json:"id" jsonschema:"The memory ID to retrieve"`
}

// GetEpisodicOutput defines the output for the get_episodic_memory tool.
type GetEpisodicOutput struct {
	Memory EpisodicItem `json:"memory"`
}

// GetEpisodicTool returns the tool definition for get_episodic_memory.
func GetEpisodicTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_episodic_memory",
		Description: "Retrieve an episodic memory by ID, including its temporal chain links (previous/next) and related memory IDs.",
	}
}

// HandleGetEpisodic handles the get_episodic_memory tool call.
func (h *Handler) HandleGetEpisodic(ctx context.Context, req *mcp.CallToolRequest, input GetEpisodicInput) (*mcp.CallToolResult, GetEpisodicOutput, error) {
	h.Logger.Info("get_episodic_memory", "id", input.ID)

	mem, err := h.Service.GetEpisodicMemory(ctx, input.ID)
	if err != nil {
		h.Logger.Error("get_episodic_memory failed", "id", input.ID, "error", err)
		return nil, GetEpisodicOutput{}, fmt.Errorf("failed to get episodic memory: %w", err)
	}

	return nil, GetEpisodicOutput{Memory: episodicItem(mem)}, nil
}
