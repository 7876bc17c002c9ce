package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// AddEpisodicInput defines the input for the add_episodic_memory tool.
type AddEpisodicInput struct {
	UserID       string         `json:"user_id" jsonschema:"The user who owns this memory"`
	SessionID    string         `json:"session_id,omitempty" jsonschema:"The conversation session this event belongs to"`
	Content      string         `json:"content" jsonschema:"What happened, in plain text"`
	Timestamp    string         `json:"timestamp,omitempty" jsonschema:"RFC3339 event time (defaults to now)"`
	Context      map[string]any `json:"context,omitempty" jsonschema:"Arbitrary structured context for the event"`
	Importance   float64        `json:"importance,omitempty" jsonschema:"Importance score in [0,1]"`
	Tags         []string       `json:"tags,omitempty" jsonschema:"Tags for filtering episodic memories"`
	Location     string         `json:"location,omitempty" jsonschema:"Where the event happened"`
	Participants []string       `json:"participants,omitempty" jsonschema:"Who was involved in the event"`
	Previous     string         `json:"previous,omitempty" jsonschema:"ID of the preceding event in the session chain"`
	Next         string         `json:"next,omitempty" jsonschema:"ID of the following event in the session chain"`
	Related      []string       `json:"related,omitempty" jsonschema:"IDs of existing memories to link with RELATED"`
}

// AddEpisodicOutput defines the output for the add_episodic_memory tool.
type AddEpisodicOutput struct {
	Memory EpisodicItem `json:"memory"`
}

// AddEpisodicTool returns the tool definition for add_episodic_memory.
func AddEpisodicTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_episodic_memory",
		Description: "Store an episodic memory: a single observed event scoped to a user and session. Passing previous links the event into the session's temporal chain; stale chain edges on either side are rewired so each event keeps a single predecessor and successor.",
	}
}

// HandleAddEpisodic handles the add_episodic_memory tool call.
func (h *Handler) HandleAddEpisodic(ctx context.Context, req *mcp.CallToolRequest, input AddEpisodicInput) (*mcp.CallToolResult, AddEpisodicOutput, error) {
	h.Logger.Info("add_episodic_memory", "user_id", input.UserID, "session_id", input.SessionID, "content_len", len(input.Content))

	timestamp, err := parseTime(input.Timestamp)
	if err != nil {
		return nil, AddEpisodicOutput{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	mem := &models.EpisodicMemory{
		UserID:    input.UserID,
		SessionID: input.SessionID,
		Timestamp: timestamp,
		Content:   input.Content,
		Context:   input.Context,
		Metadata: models.EpisodicMetadata{
			Importance:   input.Importance,
			Tags:         input.Tags,
			Location:     input.Location,
			Participants: input.Participants,
		},
		Relationships: models.EpisodicRelationships{
			Previous: input.Previous,
			Next:     input.Next,
			Related:  input.Related,
		},
	}

	created, err := h.Service.StoreEpisodicMemory(ctx, mem)
	if err != nil {
		h.Logger.Error("add_episodic_memory failed", "user_id", input.UserID, "error", err)
		return nil, AddEpisodicOutput{}, fmt.Errorf("failed to store episodic memory: %w", err)
	}

	h.Logger.Info("add_episodic_memory complete", "id", created.ID)
	return nil, AddEpisodicOutput{Memory: episodicItem(created)}, nil
}
