package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
)

// UpdateSemanticInput defines the input for the update_semantic_memory tool.
// Omitted fields are left unchanged.
type UpdateSemanticInput struct {
	ID               string              `json:"id" jsonschema:"The memory ID to update"`
	Concept          *string             `json:"concept,omitempty" jsonschema:"New concept name"`
	Description      *string             `json:"description,omitempty" jsonschema:"New description; changing it re-embeds the concept"`
	Category         *string             `json:"category,omitempty" jsonschema:"New category label"`
	Confidence       *float64            `json:"confidence,omitempty" jsonschema:"New confidence score in [0,1]"`
	Source           *string             `json:"source,omitempty" jsonschema:"New source label"`
	AddRelationships map[string][]string `json:"add_relationships,omitempty" jsonschema:"Typed edges to add, keyed by relation type"`
}

// UpdateSemanticOutput defines the output for the update_semantic_memory tool.
type UpdateSemanticOutput struct {
	Memory  SemanticItem `json:"memory"`
	Warning string       `json:"warning,omitempty"`
}

// UpdateSemanticTool returns the tool definition for update_semantic_memory.
func UpdateSemanticTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_semantic_memory",
		Description: "Update fields of an existing semantic memory. Changing the description re-embeds the concept so similarity search stays in step with its text.",
	}
}

// HandleUpdateSemantic handles the update_semantic_memory tool call.
func (h *Handler) HandleUpdateSemantic(ctx context.Context, req *mcp.CallToolRequest, input UpdateSemanticInput) (*mcp.CallToolResult, UpdateSemanticOutput, error) {
	h.Logger.Info("update_semantic_memory", "id", input.ID)

	patch := memory.SemanticPatch{
		Concept:          input.Concept,
		Description:      input.Description,
		Category:         input.Category,
		Confidence:       input.Confidence,
		Source:           input.Source,
		AddRelationships: relationships(input.AddRelationships),
	}

	updated, warning, err := h.Service.UpdateSemanticMemory(ctx, input.ID, patch)
	if err != nil {
		h.Logger.Error("update_semantic_memory failed", "id", input.ID, "error", err)
		return nil, UpdateSemanticOutput{}, fmt.Errorf("failed to update semantic memory: %w", err)
	}

	h.Logger.Info("update_semantic_memory complete", "id", updated.ID, "index_state", updated.IndexState)
	return nil, UpdateSemanticOutput{Memory: semanticItem(updated), Warning: warning}, nil
}
