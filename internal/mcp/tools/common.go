package tools

import (
	"log/slog"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// Handler provides the dependencies needed by tool handlers.
type Handler struct {
	Service *memory.Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(service *memory.Service, logger *slog.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
	}
}

// EpisodicItem is the wire representation of an episodic memory.
type EpisodicItem struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	SessionID    string         `json:"session_id,omitempty"`
	Timestamp    string         `json:"timestamp"`
	Content      string         `json:"content"`
	Context      map[string]any `json:"context,omitempty"`
	Importance   float64        `json:"importance"`
	Tags         []string       `json:"tags,omitempty"`
	Location     string         `json:"location,omitempty"`
	Participants []string       `json:"participants,omitempty"`
	Previous     string         `json:"previous,omitempty"`
	Next         string         `json:"next,omitempty"`
	Related      []string       `json:"related,omitempty"`
}

// SemanticItem is the wire representation of a semantic memory. The raw
// embedding vector is deliberately omitted.
type SemanticItem struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Concept       string              `json:"concept"`
	Description   string              `json:"description"`
	Category      string              `json:"category,omitempty"`
	Confidence    float64             `json:"confidence"`
	Source        string              `json:"source,omitempty"`
	AccessCount   int64               `json:"access_count"`
	IndexState    string              `json:"index_state"`
	Relationships map[string][]string `json:"relationships,omitempty"`
}

func episodicItem(m *models.EpisodicMemory) EpisodicItem {
	return EpisodicItem{
		ID:           m.ID,
		UserID:       m.UserID,
		SessionID:    m.SessionID,
		Timestamp:    formatTime(m.Timestamp),
		Content:      m.Content,
		Context:      m.Context,
		Importance:   m.Metadata.Importance,
		Tags:         m.Metadata.Tags,
		Location:     m.Metadata.Location,
		Participants: m.Metadata.Participants,
		Previous:     m.Relationships.Previous,
		Next:         m.Relationships.Next,
		Related:      m.Relationships.Related,
	}
}

func semanticItem(m *models.SemanticMemory) SemanticItem {
	item := SemanticItem{
		ID:          m.ID,
		UserID:      m.UserID,
		Concept:     m.Concept,
		Description: m.Description,
		Category:    m.Category,
		Confidence:  m.Metadata.Confidence,
		Source:      m.Metadata.Source,
		AccessCount: m.Metadata.AccessCount,
		IndexState:  string(m.IndexState),
	}
	if len(m.Relationships) > 0 {
		item.Relationships = make(map[string][]string, len(m.Relationships))
		for relType, ids := range m.Relationships {
			item.Relationships[string(relType)] = ids
		}
	}
	return item
}

func episodicItems(memories []models.EpisodicMemory) []EpisodicItem {
	items := make([]EpisodicItem, len(memories))
	for i := range memories {
		items[i] = episodicItem(&memories[i])
	}
	return items
}

func semanticItems(memories []models.SemanticMemory) []SemanticItem {
	items := make([]SemanticItem, len(memories))
	for i := range memories {
		items[i] = semanticItem(&memories[i])
	}
	return items
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// relationships converts a string-keyed relationship map to typed edges.
func relationships(m map[string][]string) map[models.RelationType][]string {
	if len(m) == 0 {
		return nil
	}
	result := make(map[models.RelationType][]string, len(m))
	for relType, ids := range m {
		result[models.RelationType(relType)] = ids
	}
	return result
}
