package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// ContextOutput is the shared output shape for the context tools.
type ContextOutput struct {
	UserID         string         `json:"user_id"`
	SessionID      string         `json:"session_id,omitempty"`
	Episodic       []EpisodicItem `json:"episodic"`
	Semantic       []SemanticItem `json:"semantic"`
	SemanticScores []float32      `json:"semantic_scores,omitempty"`
	WindowStart    string         `json:"window_start,omitempty"`
	WindowEnd      string         `json:"window_end,omitempty"`
	RelevanceScore float64        `json:"relevance_score"`
	Degraded       bool           `json:"degraded,omitempty"`
}

func contextOutput(mc *models.MemoryContext) ContextOutput {
	return ContextOutput{
		UserID:         mc.UserID,
		SessionID:      mc.SessionID,
		Episodic:       episodicItems(mc.Episodic),
		Semantic:       semanticItems(mc.Semantic),
		SemanticScores: mc.SemanticScores,
		WindowStart:    formatTime(mc.Window.Start),
		WindowEnd:      formatTime(mc.Window.End),
		RelevanceScore: mc.Window.RelevanceScore,
		Degraded:       mc.Degraded,
	}
}

// GetContextInput defines the input for the get_memory_context tool.
type GetContextInput struct {
	UserID    string `json:"user_id" jsonschema:"The user whose context to assemble"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Restrict the episodic half to one session"`
}

// GetContextTool returns the tool definition for get_memory_context.
func GetContextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_memory_context",
		Description: "Assemble a working memory context for a user: recent episodic events plus semantic concepts relevant to them, with a time window and an aggregate relevance score. The semantic half is seeded from the newest episodic contents.",
	}
}

// HandleGetContext handles the get_memory_context tool call.
func (h *Handler) HandleGetContext(ctx context.Context, req *mcp.CallToolRequest, input GetContextInput) (*mcp.CallToolResult, ContextOutput, error) {
	h.Logger.Info("get_memory_context", "user_id", input.UserID, "session_id", input.SessionID)

	mc, err := h.Service.GetMemoryContext(ctx, input.UserID, input.SessionID)
	if err != nil {
		h.Logger.Error("get_memory_context failed", "user_id", input.UserID, "error", err)
		return nil, ContextOutput{}, fmt.Errorf("failed to assemble context: %w", err)
	}

	h.Logger.Info("get_memory_context complete", "episodic", len(mc.Episodic), "semantic", len(mc.Semantic), "degraded", mc.Degraded)
	return nil, contextOutput(mc), nil
}

// EnhanceContextInput defines the input for the enhance_context tool.
type EnhanceContextInput struct {
	UserID    string `json:"user_id" jsonschema:"The user whose context to assemble"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Restrict the episodic half to one session"`
	Message   string `json:"message" jsonschema:"The current message; semantic retrieval is seeded from it instead of recent history"`
}

// EnhanceContextTool returns the tool definition for enhance_context.
func EnhanceContextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "enhance_context",
		Description: "Assemble a memory context steered by the current message: recent episodic events plus semantic concepts similar to the message text rather than to the recent history.",
	}
}

// HandleEnhanceContext handles the enhance_context tool call.
func (h *Handler) HandleEnhanceContext(ctx context.Context, req *mcp.CallToolRequest, input EnhanceContextInput) (*mcp.CallToolResult, ContextOutput, error) {
	h.Logger.Info("enhance_context", "user_id", input.UserID, "session_id", input.SessionID, "message_len", len(input.Message))

	mc, err := h.Service.EnhanceContext(ctx, input.UserID, input.SessionID, input.Message)
	if err != nil {
		h.Logger.Error("enhance_context failed", "user_id", input.UserID, "error", err)
		return nil, ContextOutput{}, fmt.Errorf("failed to enhance context: %w", err)
	}

	h.Logger.Info("enhance_context complete", "episodic", len(mc.Episodic), "semantic", len(mc.Semantic), "degraded", mc.Degraded)
	return nil, contextOutput(mc), nil
}
