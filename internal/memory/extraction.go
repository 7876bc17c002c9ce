package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// ExtractionPipeline distills semantic concepts from batches of episodic
// memories. A run walks collect -> extract -> deduplicate -> persist; failure
// at any stage aborts the run with its partial counts preserved. Provenance
// is recorded as DERIVED_FROM edges, which also makes collection idempotent:
// an episodic memory with an incoming DERIVED_FROM edge is never re-collected.
type ExtractionPipeline struct {
	repo      *Repository
	search    *SearchEngine
	extractor ConceptExtractor
	opts      Options
	logger    *slog.Logger

	mu    sync.Mutex
	state models.ExtractionState
	stats models.ExtractionStats
}

// NewExtractionPipeline creates a pipeline over the shared repository.
func NewExtractionPipeline(repo *Repository, search *SearchEngine, extractor ConceptExtractor, logger *slog.Logger) *ExtractionPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionPipeline{
		repo:      repo,
		search:    search,
		extractor: extractor,
		opts:      repo.Options(),
		logger:    logger,
		state:     models.StateIdle,
	}
}

// Stats returns the pipeline's cumulative counters and current state.
func (p *ExtractionPipeline) Stats() models.ExtractionStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := p.stats
	stats.State = p.state
	return stats
}

func (p *ExtractionPipeline) setState(s models.ExtractionState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes one extraction pass for a user. Runs are serialized per
// pipeline; a second caller waits rather than interleaving batches.
// Cancellation is honored between stages and between candidates, never
// mid-persist.
func (p *ExtractionPipeline) Run(ctx context.Context, req models.ExtractionRequest) (*models.ExtractionResult, error) {
	if req.UserID == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "is required"}
	}

	p.mu.Lock()
	for p.state != models.StateIdle && p.state != models.StateFailed {
		p.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
		p.mu.Lock()
	}
	p.state = models.StateCollecting
	p.mu.Unlock()

	start := time.Now()
	result := &models.ExtractionResult{}

	err := p.run(ctx, req, result)
	result.ProcessingTime = time.Since(start)

	p.mu.Lock()
	p.stats.TotalRuns++
	p.stats.MemoriesProcessed += result.MemoriesProcessed
	p.stats.ConceptsExtracted += result.ConceptsExtracted
	p.stats.ConceptsMerged += result.ConceptsMerged
	p.stats.RelationshipsCreated += result.RelationshipsCreated
	p.stats.LastRun = time.Now().UTC()
	if err != nil {
		p.stats.FailedRuns++
		p.state = models.StateFailed
	} else {
		p.state = models.StateIdle
	}
	p.mu.Unlock()

	if err != nil {
		return result, err
	}
	return result, nil
}

func (p *ExtractionPipeline) run(ctx context.Context, req models.ExtractionRequest, result *models.ExtractionResult) error {
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = p.opts.BatchSize
	}

	// Collect: unprocessed episodic memories, oldest first so chains are
	// consumed in order.
	batch, err := p.repo.QueryEpisodic(ctx, QuerySpec{
		UserID:              req.UserID,
		SessionID:           req.SessionID,
		WithoutIncomingEdge: models.RelDerivedFrom,
		Limit:               batchSize,
	})
	if err != nil {
		return &ExtractionError{State: models.StateCollecting, Partial: *result, Err: err}
	}
	if len(batch) == 0 {
		return nil
	}
	// Query returns newest first; reverse to process in temporal order.
	for i, j := 0, len(batch)-1; i < j; i, j = i+1, j-1 {
		batch[i], batch[j] = batch[j], batch[i]
	}

	if err := ctx.Err(); err != nil {
		return &ExtractionError{State: models.StateCollecting, Partial: *result, Err: err}
	}

	// Extract: one collaborator call for the whole batch.
	p.setState(models.StateExtracting)
	var candidates []models.ConceptCandidate
	if err := p.opts.Retry.Do(ctx, func(ctx context.Context) error {
		var xerr error
		candidates, xerr = p.extractor.ExtractConcepts(ctx, batch)
		return xerr
	}); err != nil {
		return &ExtractionError{State: models.StateExtracting, Partial: *result, Err: err}
	}
	candidates = p.filterCandidates(candidates)

	// Deduplicate and persist candidate by candidate, so a failure never
	// loses the concepts already written.
	p.setState(models.StateDeduplicating)
	conceptIDs := make(map[string]string) // concept label -> memory id
	var persisted []persistedCandidate

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return &ExtractionError{State: models.StateDeduplicating, Partial: *result, Err: err}
		}

		existingID, err := p.findMergeTarget(ctx, req.UserID, cand)
		if err != nil {
			return &ExtractionError{State: models.StateDeduplicating, Partial: *result, Err: err}
		}

		p.setState(models.StatePersisting)
		var id string
		if existingID != "" {
			id, err = p.mergeCandidate(ctx, existingID, cand)
			if err == nil {
				result.ConceptsMerged++
			}
		} else {
			id, err = p.persistCandidate(ctx, req.UserID, cand)
			if err == nil {
				result.ConceptsExtracted++
			}
		}
		if err != nil {
			return &ExtractionError{State: models.StatePersisting, Partial: *result, Err: err}
		}
		conceptIDs[cand.Concept] = id
		persisted = append(persisted, persistedCandidate{id: id, candidate: cand})
		p.setState(models.StateDeduplicating)
	}

	// Wire candidate-to-candidate relations once every concept has an id.
	p.setState(models.StatePersisting)
	for _, pc := range persisted {
		for _, rel := range pc.candidate.Relations {
			targetID, ok := conceptIDs[rel.TargetConcept]
			if !ok || targetID == pc.id {
				continue
			}
			if err := p.repo.createSemanticEdge(ctx, pc.id, targetID, rel.Type); err != nil {
				p.logger.Warn("extraction: failed to create relation",
					"from", pc.id, "to", targetID, "type", rel.Type, "error", err)
				continue
			}
			result.RelationshipsCreated++
		}
	}

	// Mark sources processed even when they yielded no concepts, so the next
	// run does not re-collect them.
	processed := make(map[string]bool)
	for _, pc := range persisted {
		processed[pc.candidate.SourceMemoryID] = true
	}
	for _, m := range batch {
		if !processed[m.ID] {
			if err := p.markProcessed(ctx, m.ID); err != nil {
				return &ExtractionError{State: models.StatePersisting, Partial: *result, Err: err}
			}
		}
	}
	result.MemoriesProcessed = len(batch)
	return nil
}

type persistedCandidate struct {
	id        string
	candidate models.ConceptCandidate
}

// filterCandidates drops low-confidence candidates and caps the number kept
// per source memory, preferring higher confidence.
func (p *ExtractionPipeline) filterCandidates(candidates []models.ConceptCandidate) []models.ConceptCandidate {
	perSource := make(map[string][]models.ConceptCandidate)
	var order []string
	for _, c := range candidates {
		if c.Confidence < p.opts.MinConfidence {
			continue
		}
		if c.Concept == "" || c.Description == "" {
			continue
		}
		if _, seen := perSource[c.SourceMemoryID]; !seen {
			order = append(order, c.SourceMemoryID)
		}
		perSource[c.SourceMemoryID] = append(perSource[c.SourceMemoryID], c)
	}

	var kept []models.ConceptCandidate
	for _, source := range order {
		group := perSource[source]
		for i := 1; i < len(group); i++ {
			for j := i; j > 0 && group[j].Confidence > group[j-1].Confidence; j-- {
				group[j], group[j-1] = group[j-1], group[j]
			}
		}
		if len(group) > p.opts.MaxConceptsPerMemory {
			group = group[:p.opts.MaxConceptsPerMemory]
		}
		kept = append(kept, group...)
	}
	return kept
}

// findMergeTarget looks for an existing concept similar enough to absorb the
// candidate. The merge threshold sits above the search threshold so ordinary
// search neighbors are not collapsed into one another.
func (p *ExtractionPipeline) findMergeTarget(ctx context.Context, userID string, cand models.ConceptCandidate) (string, error) {
	result, err := p.search.SearchSemantic(ctx, models.SemanticQuery{
		UserID:    userID,
		Query:     cand.Description,
		Threshold: &p.opts.MergeThreshold,
		Limit:     1,
	})
	if err != nil {
		return "", err
	}
	if result.Degraded || len(result.Memories) == 0 {
		// With the vector index down dedup cannot run; creating a possible
		// duplicate beats losing the concept.
		return "", nil
	}
	return result.Memories[0].ID, nil
}

// mergeCandidate folds a candidate into an existing concept: confidence is
// raised to the max of the two, keywords are unioned, and the new source
// lineage is added.
func (p *ExtractionPipeline) mergeCandidate(ctx context.Context, existingID string, cand models.ConceptCandidate) (string, error) {
	existing, err := p.repo.GetSemantic(ctx, existingID)
	if err != nil {
		return "", err
	}

	fields := map[string]any{}
	if cand.Confidence > existing.Metadata.Confidence {
		fields[fieldConfidence] = cand.Confidence
	}
	// A directly-stored concept has no extraction block yet; merging into it
	// starts one so source lineage survives the merge.
	ext := models.ExtractionMetadata{ExtractionConfidence: cand.Confidence}
	if existing.Metadata.Extraction != nil {
		ext = *existing.Metadata.Extraction
	}
	ext.SourceMemoryIDs = appendUnique(ext.SourceMemoryIDs, cand.SourceMemoryID)
	ext.Keywords = appendUniqueAll(ext.Keywords, cand.Keywords)
	ext.ExtractionTimestamp = time.Now().UTC()
	fields[fieldExtraction] = toJSON(&ext)
	if len(fields) > 0 {
		if err := p.repo.doGraph(ctx, func(ctx context.Context) error {
			return p.repo.graph.UpdateNode(ctx, existingID, fields)
		}); err != nil {
			return "", fmt.Errorf("merge concept %s: %w", existingID, err)
		}
	}

	if err := p.markProcessedInto(ctx, existingID, cand.SourceMemoryID); err != nil {
		return "", err
	}
	return existingID, nil
}

// persistCandidate stores a brand-new concept with extraction provenance.
func (p *ExtractionPipeline) persistCandidate(ctx context.Context, userID string, cand models.ConceptCandidate) (string, error) {
	m := &models.SemanticMemory{
		UserID:      userID,
		Concept:     cand.Concept,
		Description: cand.Description,
		Category:    cand.Category,
		Metadata: models.SemanticMetadata{
			Confidence: cand.Confidence,
			Source:     "extraction",
			Extraction: &models.ExtractionMetadata{
				SourceMemoryIDs:      []string{cand.SourceMemoryID},
				ExtractionTimestamp:  time.Now().UTC(),
				ExtractionConfidence: cand.Confidence,
				Keywords:             cand.Keywords,
			},
		},
	}
	stored, warning, err := p.repo.StoreSemantic(ctx, m)
	if err != nil {
		return "", err
	}
	if warning != "" {
		p.logger.Warn("extraction: concept stored degraded", "concept", cand.Concept, "warning", warning)
	}
	if err := p.markProcessedInto(ctx, stored.ID, cand.SourceMemoryID); err != nil {
		return "", err
	}
	return stored.ID, nil
}

// markProcessedInto records lineage from a concept back to its episodic source.
func (p *ExtractionPipeline) markProcessedInto(ctx context.Context, conceptID, sourceID string) error {
	return p.repo.doGraph(ctx, func(ctx context.Context) error {
		return p.repo.graph.CreateEdge(ctx, Edge{
			FromID: conceptID,
			ToID:   sourceID,
			Type:   models.RelDerivedFrom,
		})
	})
}

// markProcessed stamps an episodic memory that yielded no concepts, using a
// self-referencing lineage edge so collection skips it next run.
func (p *ExtractionPipeline) markProcessed(ctx context.Context, memoryID string) error {
	return p.repo.doGraph(ctx, func(ctx context.Context) error {
		return p.repo.graph.CreateEdge(ctx, Edge{
			FromID: memoryID,
			ToID:   memoryID,
			Type:   models.RelDerivedFrom,
		})
	})
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

func appendUniqueAll(values []string, add []string) []string {
	for _, v := range add {
		values = appendUnique(values, v)
	}
	return values
}
