package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
)

// UpdateEpisodicInput defines the input for the update_episodic_memory tool.
// Omitted fields are left unchanged.
type UpdateEpisodicInput struct {
	ID           string         `json:"id" jsonschema:"The memory ID to update"`
	Content      *string        `json:"content,omitempty" jsonschema:"New content"`
	Context      map[string]any `json:"context,omitempty" jsonschema:"Replacement structured context"`
	Importance   *float64       `json:"importance,omitempty" jsonschema:"New importance score in [0,1]"`
	Tags         []string       `json:"tags,omitempty" jsonschema:"Replacement tag list"`
	Location     *string        `json:"location,omitempty" jsonschema:"New location"`
	Participants []string       `json:"participants,omitempty" jsonschema:"Replacement participant list"`
	Previous     *string        `json:"previous,omitempty" jsonschema:"Relink the chain predecessor to this ID"`
	Next         *string        `json:"next,omitempty" jsonschema:"Relink the chain successor to this ID"`
	AddRelated   []string       `json:"add_related,omitempty" jsonschema:"IDs of memories to additionally link with RELATED"`
}

// UpdateEpisodicOutput defines the output for the update_episodic_memory tool.
type UpdateEpisodicOutput struct {
	Memory EpisodicItem `json:"memory"`
}

// UpdateEpisodicTool returns the tool definition for update_episodic_memory.
func UpdateEpisodicTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_episodic_memory",
		Description: "Update fields of an existing episodic memory. Only provided fields change; relinking previous or next rewires the session chain and removes the stale edges it replaces.",
	}
}

// HandleUpdateEpisodic handles the update_episodic_memory tool call.
func (h *Handler) HandleUpdateEpisodic(ctx context.Context, req *mcp.CallToolRequest, input UpdateEpisodicInput) (*mcp.CallToolResult, UpdateEpisodicOutput, error) {
	h.Logger.Info("update_episodic_memory", "id", input.ID)

	patch := memory.EpisodicPatch{
		Content:      input.Content,
		Context:      input.Context,
		Importance:   input.Importance,
		Tags:         input.Tags,
		Location:     input.Location,
		Participants: input.Participants,
		Previous:     input.Previous,
		Next:         input.Next,
		AddRelated:   input.AddRelated,
	}

	updated, err := h.Service.UpdateEpisodicMemory(ctx, input.ID, patch)
	if err != nil {
		h.Logger.Error("update_episodic_memory failed", "id", input.ID, "error", err)
		return nil, UpdateEpisodicOutput{}, fmt.Errorf("failed to update episodic memory: %w", err)
	}

	h.Logger.Info("update_episodic_memory complete", "id", updated.ID)
	return nil, UpdateEpisodicOutput{Memory: episodicItem(updated)}, nil
}
