package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetSemanticInput defines the input for the get_semantic_memory tool.
type GetSemanticInput struct {
	ID string `json:"id" jsonschema:"The memory ID to retrieve"`
}

// GetSemanticOutput defines the output for the get_semantic_memory tool.
type GetSemanticOutput struct {
	Memory SemanticItem `json:"memory"`
}

// GetSemanticTool returns the tool definition for get_semantic_memory.
func GetSemanticTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_semantic_memory",
		Description: "Retrieve a semantic memory by ID. Reads bump the concept's access count and last-accessed time.",
	}
}

// HandleGetSemantic handles the get_semantic_memory tool call.
func (h *Handler) HandleGetSemantic(ctx context.Context, req *mcp.CallToolRequest, input GetSemanticInput) (*mcp.CallToolResult, GetSemanticOutput, error) {
	h.Logger.Info("get_semantic_memory", "id", input.ID)

	mem, err := h.Service.GetSemanticMemory(ctx, input.ID)
	if err != nil {
		h.Logger.Error("get_semantic_memory failed", "id", input.ID, "error", err)
		return nil, GetSemanticOutput{}, fmt.Errorf("failed to get semantic memory: %w", err)
	}

	return nil, GetSemanticOutput{Memory: semanticItem(mem)}, nil
}
