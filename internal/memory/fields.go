package memory

import (
	"encoding/json"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// Node field names shared by the repository and graph store implementations.
const (
	fieldUserID       = "user_id"
	fieldSessionID    = "session_id"
	fieldTimestamp    = "timestamp"
	fieldContent      = "content"
	fieldContext      = "context"
	fieldImportance   = "importance"
	fieldTags         = "tags"
	fieldLocation     = "location"
	fieldParticipants = "participants"

	fieldConcept      = "concept"
	fieldDescription  = "description"
	fieldVector       = "vector"
	fieldCategory     = "category"
	fieldConfidence   = "confidence"
	fieldSource       = "source"
	fieldLastAccessed = "last_accessed"
	fieldAccessCount  = "access_count"
	fieldExtraction   = "extraction_metadata"
	fieldIndexState   = "index_state"
)

func episodicToFields(m *models.EpisodicMemory) map[string]any {
	fields := map[string]any{
		fieldUserID:     m.UserID,
		fieldSessionID:  m.SessionID,
		fieldTimestamp:  m.Timestamp,
		fieldContent:    m.Content,
		fieldImportance: m.Metadata.Importance,
		fieldTags:       append([]string{}, m.Metadata.Tags...),
	}
	if m.Metadata.Location != "" {
		fields[fieldLocation] = m.Metadata.Location
	}
	if len(m.Metadata.Participants) > 0 {
		fields[fieldParticipants] = append([]string{}, m.Metadata.Participants...)
	}
	// The context bag is an open map of JSON-like values; persist it opaquely.
	if len(m.Context) > 0 {
		fields[fieldContext] = toJSON(m.Context)
	}
	return fields
}

func episodicFromNode(node *Node) *models.EpisodicMemory {
	m := &models.EpisodicMemory{
		ID:        node.ID,
		UserID:    getString(node.Fields, fieldUserID),
		SessionID: getString(node.Fields, fieldSessionID),
		Content:   getString(node.Fields, fieldContent),
		Timestamp: getTime(node.Fields, fieldTimestamp),
		Metadata: models.EpisodicMetadata{
			Importance:   getFloat(node.Fields, fieldImportance),
			Tags:         getStrings(node.Fields, fieldTags),
			Location:     getString(node.Fields, fieldLocation),
			Participants: getStrings(node.Fields, fieldParticipants),
		},
	}
	if raw := getString(node.Fields, fieldContext); raw != "" {
		var bag map[string]any
		if err := json.Unmarshal([]byte(raw), &bag); err == nil {
			m.Context = bag
		}
	}
	return m
}

func semanticToFields(m *models.SemanticMemory) map[string]any {
	fields := map[string]any{
		fieldUserID:       m.UserID,
		fieldConcept:      m.Concept,
		fieldDescription:  m.Description,
		fieldTimestamp:    m.Metadata.LastAccessed,
		fieldConfidence:   m.Metadata.Confidence,
		fieldLastAccessed: m.Metadata.LastAccessed,
		fieldAccessCount:  m.Metadata.AccessCount,
		fieldIndexState:   string(m.IndexState),
	}
	if m.Category != "" {
		fields[fieldCategory] = m.Category
	}
	if m.Metadata.Source != "" {
		fields[fieldSource] = m.Metadata.Source
	}
	if len(m.Vector) > 0 {
		fields[fieldVector] = vectorToFloat64(m.Vector)
	}
	if m.Metadata.Extraction != nil {
		fields[fieldExtraction] = toJSON(m.Metadata.Extraction)
	}
	return fields
}

func semanticFromNode(node *Node) *models.SemanticMemory {
	m := &models.SemanticMemory{
		ID:          node.ID,
		UserID:      getString(node.Fields, fieldUserID),
		Concept:     getString(node.Fields, fieldConcept),
		Description: getString(node.Fields, fieldDescription),
		Category:    getString(node.Fields, fieldCategory),
		Vector:      getVector(node.Fields, fieldVector),
		Metadata: models.SemanticMetadata{
			Confidence:   getFloat(node.Fields, fieldConfidence),
			Source:       getString(node.Fields, fieldSource),
			LastAccessed: getTime(node.Fields, fieldLastAccessed),
			AccessCount:  getInt(node.Fields, fieldAccessCount),
		},
		IndexState: models.IndexState(getString(node.Fields, fieldIndexState)),
	}
	if m.IndexState == "" {
		m.IndexState = models.IndexStateIndexed
	}
	if raw := getString(node.Fields, fieldExtraction); raw != "" {
		var meta models.ExtractionMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err == nil {
			m.Metadata.Extraction = &meta
		}
	}
	return m
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func getString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func getInt(fields map[string]any, key string) int64 {
	switch v := fields[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func getTime(fields map[string]any, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getStrings(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		if len(v) == 0 {
			return nil
		}
		return append([]string{}, v...)
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func getVector(fields map[string]any, key string) []float32 {
	switch v := fields[key].(type) {
	case []float32:
		return append([]float32{}, v...)
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(v))
		for _, item := range v {
			if f, ok := item.(float64); ok {
				out = append(out, float32(f))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

// vectorToFloat64 widens for storage; graph drivers round-trip float64 arrays.
func vectorToFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
