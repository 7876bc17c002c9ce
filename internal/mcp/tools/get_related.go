package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// GetRelatedInput defines the input for the get_related_memories tool.
type GetRelatedInput struct {
	ID           string `json:"id" jsonschema:"The memory ID to start the traversal from"`
	RelationType string `json:"relationship_type,omitempty" jsonschema:"Restrict the traversal to one relation type (e.g. SIMILAR, PART_OF); empty follows all semantic relations"`
	MaxDepth     int    `json:"max_depth,omitempty" jsonschema:"Maximum traversal depth (default 1)"`
}

// RelatedItem is a semantic memory annotated with how it was reached.
type RelatedItem struct {
	Memory       SemanticItem `json:"memory"`
	RelationType string       `json:"relationship_type"`
	Direction    string       `json:"direction"`
	Depth        int          `json:"depth"`
}

// GetRelatedOutput defines the output for the get_related_memories tool.
type GetRelatedOutput struct {
	Related []RelatedItem `json:"related"`
	Count   int           `json:"count"`
}

// GetRelatedTool returns the tool definition for get_related_memories.
func GetRelatedTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_related_memories",
		Description: "Traverse typed relationship edges from a memory and return the semantic memories reached, annotated with relation type, direction (incoming or outgoing) and depth.",
	}
}

// HandleGetRelated handles the get_related_memories tool call.
func (h *Handler) HandleGetRelated(ctx context.Context, req *mcp.CallToolRequest, input GetRelatedInput) (*mcp.CallToolResult, GetRelatedOutput, error) {
	h.Logger.Info("get_related_memories", "id", input.ID, "relationship_type", input.RelationType, "max_depth", input.MaxDepth)

	related, err := h.Service.GetRelatedMemories(ctx, input.ID, models.RelationType(input.RelationType), input.MaxDepth)
	if err != nil {
		h.Logger.Error("get_related_memories failed", "id", input.ID, "error", err)
		return nil, GetRelatedOutput{}, fmt.Errorf("failed to get related memories: %w", err)
	}

	output := GetRelatedOutput{
		Related: make([]RelatedItem, len(related)),
		Count:   len(related),
	}
	for i, r := range related {
		output.Related[i] = RelatedItem{
			Memory:       semanticItem(&r.Memory),
			RelationType: string(r.RelationType),
			Direction:    r.Direction,
			Depth:        r.Depth,
		}
	}

	return nil, output, nil
}
