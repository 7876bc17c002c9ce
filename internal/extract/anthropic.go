// Package extract derives semantic concept candidates from episodic memories
// using Claude as the reasoning collaborator.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// DefaultModel is the extraction model used when none is configured.
const DefaultModel = "claude-sonnet-4-20250514"

const defaultMaxTokens = 4096

const extractConceptsPrompt = `
You are an AI assistant that distills reusable knowledge from a user's recorded events.
Given the following events, extract general concepts worth remembering long-term.
Only extract concepts that are genuinely generalizable; skip one-off trivia.
Output the result in JSON format with the following structure:
{
  "concepts": [
    {
      "concept": "Short concept name",
      "description": "One or two sentences describing the concept",
      "category": "Category (e.g., technology, preference, person, process)",
      "confidence": 0.0,
      "keywords": ["keyword1", "keyword2"],
      "source_event_id": "id of the event this concept was derived from",
      "relations": [
        {"target_concept": "Other concept name from this output", "type": "RELATED"}
      ]
    }
  ]
}
Valid relation types: SIMILAR, RELATED, PARENT, CHILDREN, CAUSES, CAUSED_BY, PART_OF, HAS_PARTS, OPPOSITE, INSTANCE_OF.
Confidence is your certainty in [0,1] that the concept is correct and worth keeping.
Output only the JSON object, no surrounding text.

Events:
%s
`

type conceptsPayload struct {
	Concepts []conceptPayload `json:"concepts"`
}

type conceptPayload struct {
	Concept       string            `json:"concept"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Confidence    float64           `json:"confidence"`
	Keywords      []string          `json:"keywords"`
	SourceEventID string            `json:"source_event_id"`
	Relations     []relationPayload `json:"relations"`
}

type relationPayload struct {
	TargetConcept string `json:"target_concept"`
	Type          string `json:"type"`
}

// Extractor calls the Anthropic API to turn episodic batches into concept
// candidates.
type Extractor struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// Config holds extractor configuration.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// New creates an extractor.
func New(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Extractor{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}, nil
}

// ExtractConcepts asks the model for concept candidates derived from the
// batch. Candidates referencing event ids outside the batch are dropped.
func (e *Extractor) ExtractConcepts(ctx context.Context, batch []models.EpisodicMemory) ([]models.ConceptCandidate, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(extractConceptsPrompt, formatBatch(batch))
	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	payload, err := parseConcepts(text)
	if err != nil {
		return nil, err
	}

	inBatch := make(map[string]bool, len(batch))
	for _, m := range batch {
		inBatch[m.ID] = true
	}

	var candidates []models.ConceptCandidate
	for _, c := range payload.Concepts {
		if !inBatch[c.SourceEventID] {
			continue
		}
		cand := models.ConceptCandidate{
			Concept:        c.Concept,
			Description:    c.Description,
			Category:       c.Category,
			Confidence:     c.Confidence,
			Keywords:       c.Keywords,
			SourceMemoryID: c.SourceEventID,
		}
		for _, rel := range c.Relations {
			relType := models.RelationType(strings.ToUpper(rel.Type))
			if models.ValidateRelationType(relType) != nil {
				continue
			}
			cand.Relations = append(cand.Relations, models.CandidateRelation{
				TargetConcept: rel.TargetConcept,
				Type:          relType,
			})
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// formatBatch renders events as a compact listing the model can cite ids from.
func formatBatch(batch []models.EpisodicMemory) string {
	var b strings.Builder
	for _, m := range batch {
		fmt.Fprintf(&b, "- id: %s\n  time: %s\n  content: %s\n",
			m.ID, m.Timestamp.Format("2006-01-02 15:04"), m.Content)
		if len(m.Metadata.Tags) > 0 {
			fmt.Fprintf(&b, "  tags: %s\n", strings.Join(m.Metadata.Tags, ", "))
		}
	}
	return b.String()
}

// parseConcepts tolerates code fences and surrounding prose around the JSON.
func parseConcepts(text string) (*conceptsPayload, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}

	var payload conceptsPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return &payload, nil
}
