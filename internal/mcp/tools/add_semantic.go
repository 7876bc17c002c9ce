package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// AddSemanticInput defines the input for the add_semantic_memory tool.
type AddSemanticInput struct {
	UserID        string              `json:"user_id" jsonschema:"The user who owns this concept"`
	Concept       string              `json:"concept" jsonschema:"Short name of the concept"`
	Description   string              `json:"description" jsonschema:"Longer description; this text is embedded for similarity search"`
	Category      string              `json:"category,omitempty" jsonschema:"Free-form category label"`
	Confidence    float64             `json:"confidence,omitempty" jsonschema:"Confidence score in [0,1]"`
	Source        string              `json:"source,omitempty" jsonschema:"Where the concept came from (e.g. user, extraction)"`
	Relationships map[string][]string `json:"relationships,omitempty" jsonschema:"Typed edges to existing memory IDs, keyed by relation type (SIMILAR, RELATED, PARENT, CHILDREN, CAUSES, CAUSED_BY, PART_OF, HAS_PARTS, OPPOSITE, INSTANCE_OF)"`
}

// AddSemanticOutput defines the output for the add_semantic_memory tool.
type AddSemanticOutput struct {
	Memory SemanticItem `json:"memory"`
	// Warning is set when the memory was persisted but could not be indexed
	// for similarity search yet.
	Warning string `json:"warning,omitempty"`
}

// AddSemanticTool returns the tool definition for add_semantic_memory.
func AddSemanticTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_semantic_memory",
		Description: "Store a semantic memory: a distilled concept with a description that is embedded and indexed for similarity search. Concepts can link to other memories via typed relationships. If the vector index is unavailable the concept is still persisted and indexed later.",
	}
}

// HandleAddSemantic handles the add_semantic_memory tool call.
func (h *Handler) HandleAddSemantic(ctx context.Context, req *mcp.CallToolRequest, input AddSemanticInput) (*mcp.CallToolResult, AddSemanticOutput, error) {
	h.Logger.Info("add_semantic_memory", "user_id", input.UserID, "concept", input.Concept)

	mem := &models.SemanticMemory{
		UserID:      input.UserID,
		Concept:     input.Concept,
		Description: input.Description,
		Category:    input.Category,
		Metadata: models.SemanticMetadata{
			Confidence: input.Confidence,
			Source:     input.Source,
		},
		Relationships: relationships(input.Relationships),
	}

	created, warning, err := h.Service.StoreSemanticMemory(ctx, mem)
	if err != nil {
		h.Logger.Error("add_semantic_memory failed", "user_id", input.UserID, "concept", input.Concept, "error", err)
		return nil, AddSemanticOutput{}, fmt.Errorf("failed to store semantic memory: %w", err)
	}

	h.Logger.Info("add_semantic_memory complete", "id", created.ID, "index_state", created.IndexState)
	return nil, AddSemanticOutput{Memory: semanticItem(created), Warning: warning}, nil
}
