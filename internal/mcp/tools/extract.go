package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// ExtractInput defines the input for the extract_semantic_memories tool.
type ExtractInput struct {
	UserID    string `json:"user_id" jsonschema:"The user whose episodic memories to process"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Restrict the run to one session"`
	BatchSize int    `json:"batch_size,omitempty" jsonschema:"Maximum episodic memories to process in this run"`
}

// ExtractOutput defines the output for the extract_semantic_memories tool.
type ExtractOutput struct {
	MemoriesProcessed    int    `json:"memories_processed"`
	ConceptsExtracted    int    `json:"concepts_extracted"`
	ConceptsMerged       int    `json:"concepts_merged"`
	RelationshipsCreated int    `json:"relationships_created"`
	ProcessingTime       string `json:"processing_time"`
}

// ExtractTool returns the tool definition for extract_semantic_memories.
func ExtractTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "extract_semantic_memories",
		Description: "Run the semantic extraction pipeline over unprocessed episodic memories: distill concepts from events, merge near-duplicates into existing concepts, and record lineage back to the source events. Runs are idempotent; already-processed events are skipped.",
	}
}

// HandleExtract handles the extract_semantic_memories tool call.
func (h *Handler) HandleExtract(ctx context.Context, req *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	h.Logger.Info("extract_semantic_memories", "user_id", input.UserID, "session_id", input.SessionID, "batch_size", input.BatchSize)

	result, err := h.Service.ExtractSemanticFromEpisodic(ctx, models.ExtractionRequest{
		UserID:    input.UserID,
		SessionID: input.SessionID,
		BatchSize: input.BatchSize,
	})
	if err != nil {
		h.Logger.Error("extract_semantic_memories failed", "user_id", input.UserID, "error", err)
		return nil, ExtractOutput{}, fmt.Errorf("extraction failed: %w", err)
	}

	h.Logger.Info("extract_semantic_memories complete",
		"processed", result.MemoriesProcessed, "extracted", result.ConceptsExtracted,
		"merged", result.ConceptsMerged, "relationships", result.RelationshipsCreated)
	return nil, ExtractOutput{
		MemoriesProcessed:    result.MemoriesProcessed,
		ConceptsExtracted:    result.ConceptsExtracted,
		ConceptsMerged:       result.ConceptsMerged,
		RelationshipsCreated: result.RelationshipsCreated,
		ProcessingTime:       result.ProcessingTime.String(),
	}, nil
}

// ExtractionStatsInput defines the input for the get_extraction_stats tool.
type ExtractionStatsInput struct{}

// ExtractionStatsOutput defines the output for the get_extraction_stats tool.
type ExtractionStatsOutput struct {
	State                string `json:"state"`
	TotalRuns            int    `json:"total_runs"`
	FailedRuns           int    `json:"failed_runs"`
	MemoriesProcessed    int    `json:"memories_processed"`
	ConceptsExtracted    int    `json:"concepts_extracted"`
	ConceptsMerged       int    `json:"concepts_merged"`
	RelationshipsCreated int    `json:"relationships_created"`
	LastRun              string `json:"last_run,omitempty"`
}

// ExtractionStatsTool returns the tool definition for get_extraction_stats.
func ExtractionStatsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_extraction_stats",
		Description: "Report the extraction pipeline's current state and cumulative counters across runs.",
	}
}

// HandleExtractionStats handles the get_extraction_stats tool call.
func (h *Handler) HandleExtractionStats(ctx context.Context, req *mcp.CallToolRequest, input ExtractionStatsInput) (*mcp.CallToolResult, ExtractionStatsOutput, error) {
	stats := h.Service.GetSemanticExtractionStats()

	return nil, ExtractionStatsOutput{
		State:                string(stats.State),
		TotalRuns:            stats.TotalRuns,
		FailedRuns:           stats.FailedRuns,
		MemoriesProcessed:    stats.MemoriesProcessed,
		ConceptsExtracted:    stats.ConceptsExtracted,
		ConceptsMerged:       stats.ConceptsMerged,
		RelationshipsCreated: stats.RelationshipsCreated,
		LastRun:              formatTime(stats.LastRun),
	}, nil
}
