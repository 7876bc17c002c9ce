package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
	"github.com/wsyeabsera/clear-ai-sub006/internal/retry"
)

// Repository provides CRUD and relationship-integrity logic over the graph
// store for both memory kinds, keeping the vector index coherent for
// semantic memories. The graph is the source of truth; the vector index is
// secondary and rebuildable.
type Repository struct {
	graph    GraphStore
	vector   VectorStore
	embedder EmbeddingProvider
	opts     Options
	logger   *slog.Logger
	chains   *keyedMutex
}

// NewRepository creates a new repository.
func NewRepository(graph GraphStore, vector VectorStore, embedder EmbeddingProvider, opts Options, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		graph:    graph,
		vector:   vector,
		embedder: embedder,
		opts:     opts.normalized(),
		logger:   logger,
		chains:   newKeyedMutex(),
	}
}

// Options returns the normalized engine options the repository runs with.
func (r *Repository) Options() Options { return r.opts }

func chainKey(userID, sessionID string) string {
	return userID + "\x00" + sessionID
}

// StoreEpisodic assigns an id, writes the node, and links it into the session
// chain. Linking rewrites the referenced memory's counterpart pointer, so the
// bidirectional invariant holds after every write. Fails with ErrNotFound if
// a referenced relationship target does not exist for the same user.
func (r *Repository) StoreEpisodic(ctx context.Context, m *models.EpisodicMemory) (*models.EpisodicMemory, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}

	// Chain rewrites race when two writes link into the same session; keep
	// them inside the per-session critical section.
	if m.Relationships.Previous != "" || m.Relationships.Next != "" {
		unlock := r.chains.Lock(chainKey(m.UserID, m.SessionID))
		defer unlock()
	}

	for _, target := range relationshipTargets(&m.Relationships) {
		if err := r.verifyOwnedNode(ctx, target, m.UserID, models.KindEpisodic); err != nil {
			return nil, err
		}
	}

	node := Node{ID: m.ID, Kind: models.KindEpisodic, Fields: episodicToFields(m)}
	if err := r.doGraph(ctx, func(ctx context.Context) error {
		return r.graph.CreateNode(ctx, node)
	}); err != nil {
		return nil, fmt.Errorf("create episodic node: %w", err)
	}

	if m.Relationships.Previous != "" {
		if err := r.relinkNext(ctx, m.Relationships.Previous, m.ID); err != nil {
			return nil, err
		}
	}
	if m.Relationships.Next != "" {
		if err := r.relinkNext(ctx, m.ID, m.Relationships.Next); err != nil {
			return nil, err
		}
	}
	for _, related := range m.Relationships.Related {
		if err := r.createSymmetricEdge(ctx, m.ID, related, models.RelRelated); err != nil {
			return nil, err
		}
	}

	return r.GetEpisodic(ctx, m.ID)
}

func relationshipTargets(rel *models.EpisodicRelationships) []string {
	var targets []string
	if rel.Previous != "" {
		targets = append(targets, rel.Previous)
	}
	if rel.Next != "" {
		targets = append(targets, rel.Next)
	}
	targets = append(targets, rel.Related...)
	return targets
}

// relinkNext points fromID's chain successor at toID, clobbering any stale
// NEXT_IN_SESSION edge on either end. Each retry attempt re-reads the current
// edge state so a concurrent rewrite is never blindly overwritten.
func (r *Repository) relinkNext(ctx context.Context, fromID, toID string) error {
	return r.doGraph(ctx, func(ctx context.Context) error {
		fromEdges, err := r.graph.EdgesOf(ctx, fromID)
		if err != nil {
			return err
		}
		for _, e := range fromEdges {
			if e.Type == models.RelNextInSession && e.FromID == fromID && e.ToID != toID {
				if err := r.graph.DeleteEdge(ctx, e); err != nil {
					return err
				}
			}
		}
		toEdges, err := r.graph.EdgesOf(ctx, toID)
		if err != nil {
			return err
		}
		for _, e := range toEdges {
			if e.Type == models.RelNextInSession && e.ToID == toID && e.FromID != fromID {
				if err := r.graph.DeleteEdge(ctx, e); err != nil {
					return err
				}
			}
		}
		return r.graph.CreateEdge(ctx, Edge{FromID: fromID, ToID: toID, Type: models.RelNextInSession})
	})
}

func (r *Repository) createSymmetricEdge(ctx context.Context, fromID, toID string, relType models.RelationType) error {
	return r.doGraph(ctx, func(ctx context.Context) error {
		if err := r.graph.CreateEdge(ctx, Edge{FromID: fromID, ToID: toID, Type: relType}); err != nil {
			return err
		}
		return r.graph.CreateEdge(ctx, Edge{FromID: toID, ToID: fromID, Type: relType})
	})
}

// GetEpisodic retrieves an episodic memory with its chain links and
// cross-references materialized from edges.
func (r *Repository) GetEpisodic(ctx context.Context, id string) (*models.EpisodicMemory, error) {
	node, err := r.getNode(ctx, id, models.KindEpisodic)
	if err != nil {
		return nil, err
	}
	m := episodicFromNode(node)

	edges, err := r.edgesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		switch e.Type {
		case models.RelNextInSession:
			if e.FromID == id {
				m.Relationships.Next = e.ToID
			} else {
				m.Relationships.Previous = e.FromID
			}
		case models.RelRelated:
			if e.FromID == id {
				m.Relationships.Related = append(m.Relationships.Related, e.ToID)
			}
		}
	}
	return m, nil
}

// EpisodicPatch is a partial update. Nil fields are left untouched.
// Previous/Next relink the session chain under the same per-session critical
// section as StoreEpisodic.
type EpisodicPatch struct {
	Content      *string
	Context      map[string]any
	Importance   *float64
	Tags         []string
	Location     *string
	Participants []string
	Previous     *string
	Next         *string
	AddRelated   []string
}

// UpdateEpisodic patches metadata or fixes relationship links.
func (r *Repository) UpdateEpisodic(ctx context.Context, id string, patch EpisodicPatch) (*models.EpisodicMemory, error) {
	current, err := r.GetEpisodic(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Importance != nil && (*patch.Importance < 0 || *patch.Importance > 1) {
		return nil, &models.ValidationError{Field: "metadata.importance", Message: "must be in [0,1]"}
	}

	fields := map[string]any{}
	if patch.Content != nil {
		fields[fieldContent] = *patch.Content
	}
	if patch.Context != nil {
		fields[fieldContext] = toJSON(patch.Context)
	}
	if patch.Importance != nil {
		fields[fieldImportance] = *patch.Importance
	}
	if patch.Tags != nil {
		fields[fieldTags] = patch.Tags
	}
	if patch.Location != nil {
		fields[fieldLocation] = *patch.Location
	}
	if patch.Participants != nil {
		fields[fieldParticipants] = patch.Participants
	}
	if len(fields) > 0 {
		if err := r.doGraph(ctx, func(ctx context.Context) error {
			return r.graph.UpdateNode(ctx, id, fields)
		}); err != nil {
			return nil, fmt.Errorf("update episodic node: %w", err)
		}
	}

	if patch.Previous != nil || patch.Next != nil {
		unlock := r.chains.Lock(chainKey(current.UserID, current.SessionID))
		if patch.Previous != nil && *patch.Previous != "" {
			if err := r.verifyOwnedNode(ctx, *patch.Previous, current.UserID, models.KindEpisodic); err != nil {
				unlock()
				return nil, err
			}
			if err := r.relinkNext(ctx, *patch.Previous, id); err != nil {
				unlock()
				return nil, err
			}
		}
		if patch.Next != nil && *patch.Next != "" {
			if err := r.verifyOwnedNode(ctx, *patch.Next, current.UserID, models.KindEpisodic); err != nil {
				unlock()
				return nil, err
			}
			if err := r.relinkNext(ctx, id, *patch.Next); err != nil {
				unlock()
				return nil, err
			}
		}
		unlock()
	}

	for _, related := range patch.AddRelated {
		if err := r.verifyOwnedNode(ctx, related, current.UserID, models.KindEpisodic); err != nil {
			return nil, err
		}
		if err := r.createSymmetricEdge(ctx, id, related, models.RelRelated); err != nil {
			return nil, err
		}
	}

	return r.GetEpisodic(ctx, id)
}

// StoreSemantic assigns an id, embeds the description when no vector was
// supplied, writes the graph node, then writes the vector. The two writes are
// not transactional: a vector-side failure downgrades the memory to
// pending-index and is reported as a warning, not an error.
func (r *Repository) StoreSemantic(ctx context.Context, m *models.SemanticMemory) (*models.SemanticMemory, string, error) {
	if err := m.Validate(r.opts.Dimensions); err != nil {
		return nil, "", err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if m.Metadata.LastAccessed.IsZero() {
		m.Metadata.LastAccessed = now
	}

	var warning string
	if len(m.Vector) == 0 {
		vec, err := r.embedder.Embed(ctx, m.Description)
		if err != nil {
			// The graph write still proceeds; the memory stays out of the
			// vector index until a reindex succeeds.
			warning = fmt.Sprintf("embedding unavailable, memory stored as %s: %v", models.IndexStatePending, err)
		} else if r.opts.Dimensions > 0 && len(vec) != r.opts.Dimensions {
			return nil, "", &models.ValidationError{
				Field:   "vector",
				Message: fmt.Sprintf("dimension mismatch: got %d, want %d", len(vec), r.opts.Dimensions),
			}
		} else {
			m.Vector = vec
		}
	}

	m.IndexState = models.IndexStateIndexed
	if len(m.Vector) == 0 {
		m.IndexState = models.IndexStatePending
	}

	node := Node{ID: m.ID, Kind: models.KindSemantic, Fields: semanticToFields(m)}
	if err := r.doGraph(ctx, func(ctx context.Context) error {
		return r.graph.CreateNode(ctx, node)
	}); err != nil {
		return nil, "", fmt.Errorf("create semantic node: %w", err)
	}

	for relType, targets := range m.Relationships {
		for _, target := range targets {
			if err := r.createSemanticEdge(ctx, m.ID, target, relType); err != nil {
				return nil, "", err
			}
		}
	}

	if len(m.Vector) > 0 {
		if err := r.upsertVector(ctx, m); err != nil {
			m.IndexState = models.IndexStatePending
			warning = fmt.Sprintf("vector index write failed, memory stored as %s: %v", models.IndexStatePending, err)
			if uerr := r.doGraph(ctx, func(ctx context.Context) error {
				return r.graph.UpdateNode(ctx, m.ID, map[string]any{fieldIndexState: string(models.IndexStatePending)})
			}); uerr != nil {
				r.logger.Warn("failed to record pending-index state", "id", m.ID, "error", uerr)
			}
		}
	}
	if warning != "" {
		r.logger.Warn("semantic memory stored degraded", "id", m.ID, "warning", warning)
	}

	return m, warning, nil
}

// createSemanticEdge writes one typed edge, adding the reverse edge for
// symmetric types and the paired inverse edge for directed types that
// have one (CAUSES materializes CAUSED_BY on the target, and so on).
func (r *Repository) createSemanticEdge(ctx context.Context, fromID, toID string, relType models.RelationType) error {
	if err := models.ValidateRelationType(relType); err != nil {
		return &models.ValidationError{Field: "relationships", Message: err.Error()}
	}
	if models.SymmetricRelations[relType] {
		return r.createSymmetricEdge(ctx, fromID, toID, relType)
	}
	return r.doGraph(ctx, func(ctx context.Context) error {
		if err := r.graph.CreateEdge(ctx, Edge{FromID: fromID, ToID: toID, Type: relType}); err != nil {
			return err
		}
		if inverse, ok := models.InverseRelations[relType]; ok {
			return r.graph.CreateEdge(ctx, Edge{FromID: toID, ToID: fromID, Type: inverse})
		}
		return nil
	})
}

func (r *Repository) upsertVector(ctx context.Context, m *models.SemanticMemory) error {
	meta := map[string]string{
		fieldUserID: m.UserID,
	}
	if m.Category != "" {
		meta[fieldCategory] = m.Category
	}
	return r.opts.Retry.Do(ctx, func(ctx context.Context) error {
		return r.vector.Upsert(ctx, m.ID, m.Vector, meta)
	})
}

// GetSemantic retrieves a semantic memory, bumping its access count and
// last-accessed timestamp. Reads mutate; this is by the data model's design.
func (r *Repository) GetSemantic(ctx context.Context, id string) (*models.SemanticMemory, error) {
	node, err := r.getNode(ctx, id, models.KindSemantic)
	if err != nil {
		return nil, err
	}
	m := semanticFromNode(node)

	edges, err := r.edgesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if e.FromID != id || !models.SemanticRelationTypes[e.Type] {
			continue
		}
		if m.Relationships == nil {
			m.Relationships = make(map[models.RelationType][]string)
		}
		m.Relationships[e.Type] = append(m.Relationships[e.Type], e.ToID)
	}

	m.Metadata.AccessCount++
	m.Metadata.LastAccessed = time.Now().UTC()
	if err := r.doGraph(ctx, func(ctx context.Context) error {
		return r.graph.UpdateNode(ctx, id, map[string]any{
			fieldAccessCount:  m.Metadata.AccessCount,
			fieldLastAccessed: m.Metadata.LastAccessed,
		})
	}); err != nil {
		// Access tracking is advisory; a failed bump never fails the read.
		r.logger.Warn("failed to record semantic access", "id", id, "error", err)
	}

	return m, nil
}

// SemanticPatch is a partial update. A description change recomputes and
// rewrites the vector.
type SemanticPatch struct {
	Concept          *string
	Description      *string
	Category         *string
	Confidence       *float64
	Source           *string
	AddRelationships map[models.RelationType][]string
}

// UpdateSemantic patches fields and keeps the vector index in step with the
// description.
func (r *Repository) UpdateSemantic(ctx context.Context, id string, patch SemanticPatch) (*models.SemanticMemory, string, error) {
	current, err := r.GetSemantic(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if patch.Confidence != nil && (*patch.Confidence < 0 || *patch.Confidence > 1) {
		return nil, "", &models.ValidationError{Field: "metadata.confidence", Message: "must be in [0,1]"}
	}

	fields := map[string]any{}
	if patch.Concept != nil {
		fields[fieldConcept] = *patch.Concept
	}
	if patch.Category != nil {
		fields[fieldCategory] = *patch.Category
	}
	if patch.Confidence != nil {
		fields[fieldConfidence] = *patch.Confidence
	}
	if patch.Source != nil {
		fields[fieldSource] = *patch.Source
	}

	var warning string
	if patch.Description != nil && *patch.Description != current.Description {
		fields[fieldDescription] = *patch.Description
		vec, err := r.embedder.Embed(ctx, *patch.Description)
		if err != nil {
			warning = fmt.Sprintf("embedding unavailable, memory downgraded to %s: %v", models.IndexStatePending, err)
			fields[fieldIndexState] = string(models.IndexStatePending)
			delete(fields, fieldVector)
		} else {
			fields[fieldVector] = vectorToFloat64(vec)
			current.Vector = vec
		}
	}

	if len(fields) > 0 {
		if err := r.doGraph(ctx, func(ctx context.Context) error {
			return r.graph.UpdateNode(ctx, id, fields)
		}); err != nil {
			return nil, "", fmt.Errorf("update semantic node: %w", err)
		}
	}

	if patch.Description != nil && warning == "" && len(current.Vector) > 0 {
		current.Description = *patch.Description
		if err := r.upsertVector(ctx, current); err != nil {
			warning = fmt.Sprintf("vector index write failed, memory downgraded to %s: %v", models.IndexStatePending, err)
			if uerr := r.doGraph(ctx, func(ctx context.Context) error {
				return r.graph.UpdateNode(ctx, id, map[string]any{fieldIndexState: string(models.IndexStatePending)})
			}); uerr != nil {
				r.logger.Warn("failed to record pending-index state", "id", id, "error", uerr)
			}
		}
	}

	for relType, targets := range patch.AddRelationships {
		for _, target := range targets {
			if err := r.createSemanticEdge(ctx, id, target, relType); err != nil {
				return nil, "", err
			}
		}
	}
	if warning != "" {
		r.logger.Warn("semantic memory updated degraded", "id", id, "warning", warning)
	}

	updated, err := r.GetSemantic(ctx, id)
	return updated, warning, err
}

// Delete removes a memory of either kind: edges pointing at it first (so no
// other memory keeps a dangling reference), then the node, then its vector
// entry if present.
func (r *Repository) Delete(ctx context.Context, id string) error {
	node, err := r.getAnyNode(ctx, id)
	if err != nil {
		return err
	}

	if err := r.doGraph(ctx, func(ctx context.Context) error {
		return r.graph.DeleteEdgesTo(ctx, id)
	}); err != nil {
		return fmt.Errorf("delete edges to %s: %w", id, err)
	}
	if err := r.doGraph(ctx, func(ctx context.Context) error {
		return r.graph.DeleteNode(ctx, id)
	}); err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}

	if node.Kind == models.KindSemantic {
		if err := r.opts.Retry.Do(ctx, func(ctx context.Context) error {
			return r.vector.Delete(ctx, id)
		}); err != nil {
			// The graph node is gone; a stale vector entry is filtered out by
			// reads and cleaned up on reindex.
			r.logger.Warn("failed to delete vector entry", "id", id, "error", err)
		}
	}
	return nil
}

// ClearUserMemories cascades over all of a user's memories. Best-effort: it
// reports partial-failure counts rather than aborting on the first error.
func (r *Repository) ClearUserMemories(ctx context.Context, userID string) (*models.ClearResult, error) {
	result := &models.ClearResult{}

	episodic, err := r.queryNodes(ctx, QuerySpec{Kind: models.KindEpisodic, UserID: userID})
	if err != nil {
		return nil, err
	}
	for _, node := range episodic {
		if err := r.Delete(ctx, node.ID); err != nil {
			r.logger.Warn("clear: failed to delete episodic memory", "id", node.ID, "error", err)
			result.Failures++
			continue
		}
		result.EpisodicDeleted++
	}

	semantic, err := r.queryNodes(ctx, QuerySpec{Kind: models.KindSemantic, UserID: userID})
	if err != nil {
		return nil, err
	}
	for _, node := range semantic {
		if err := r.Delete(ctx, node.ID); err != nil {
			r.logger.Warn("clear: failed to delete semantic memory", "id", node.ID, "error", err)
			result.Failures++
			continue
		}
		result.SemanticDeleted++
	}

	return result, nil
}

// ReindexPending retries vector writes for semantic memories stuck in
// pending-index, re-embedding when the stored vector was lost. Returns the
// number of memories successfully reindexed.
func (r *Repository) ReindexPending(ctx context.Context, userID string) (int, error) {
	nodes, err := r.queryNodes(ctx, QuerySpec{
		Kind:       models.KindSemantic,
		UserID:     userID,
		IndexState: models.IndexStatePending,
	})
	if err != nil {
		return 0, err
	}

	reindexed := 0
	for _, node := range nodes {
		m := semanticFromNode(&node)
		if len(m.Vector) == 0 {
			vec, err := r.embedder.Embed(ctx, m.Description)
			if err != nil {
				r.logger.Warn("reindex: embedding unavailable", "id", m.ID, "error", err)
				continue
			}
			m.Vector = vec
		}
		if err := r.upsertVector(ctx, m); err != nil {
			r.logger.Warn("reindex: vector write failed", "id", m.ID, "error", err)
			continue
		}
		fields := map[string]any{
			fieldIndexState: string(models.IndexStateIndexed),
			fieldVector:     vectorToFloat64(m.Vector),
		}
		if err := r.doGraph(ctx, func(ctx context.Context) error {
			return r.graph.UpdateNode(ctx, m.ID, fields)
		}); err != nil {
			r.logger.Warn("reindex: failed to record indexed state", "id", m.ID, "error", err)
			continue
		}
		reindexed++
	}
	return reindexed, nil
}

// Stats reports per-user memory counts.
func (r *Repository) Stats(ctx context.Context, userID string) (*models.MemoryStats, error) {
	stats := &models.MemoryStats{UserID: userID}

	var err error
	if err = r.doGraph(ctx, func(ctx context.Context) error {
		var cerr error
		stats.EpisodicCount, cerr = r.graph.Count(ctx, models.KindEpisodic, userID)
		return cerr
	}); err != nil {
		return nil, err
	}
	if err = r.doGraph(ctx, func(ctx context.Context) error {
		var cerr error
		stats.SemanticCount, cerr = r.graph.Count(ctx, models.KindSemantic, userID)
		return cerr
	}); err != nil {
		return nil, err
	}

	pending, err := r.queryNodes(ctx, QuerySpec{
		Kind:       models.KindSemantic,
		UserID:     userID,
		IndexState: models.IndexStatePending,
	})
	if err != nil {
		return nil, err
	}
	stats.PendingIndex = len(pending)
	return stats, nil
}

// Related walks typed edges out from a semantic memory up to maxDepth hops.
// relType narrows to a single edge type; empty means any semantic type.
// Cycles are valid data, so visited nodes are tracked, not assumed absent.
func (r *Repository) Related(ctx context.Context, id string, relType models.RelationType, maxDepth int) ([]models.RelatedMemory, error) {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	if _, err := r.getNode(ctx, id, models.KindSemantic); err != nil {
		return nil, err
	}

	type hop struct {
		id    string
		depth int
	}
	visited := map[string]bool{id: true}
	frontier := []hop{{id: id, depth: 0}}
	var results []models.RelatedMemory

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		if current.depth >= maxDepth {
			continue
		}

		edges, err := r.edgesOf(ctx, current.id)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if !models.SemanticRelationTypes[e.Type] {
				continue
			}
			if relType != "" && e.Type != relType {
				continue
			}
			neighborID, direction := e.ToID, "outgoing"
			if e.ToID == current.id {
				neighborID, direction = e.FromID, "incoming"
			}
			if visited[neighborID] {
				continue
			}
			visited[neighborID] = true

			node, err := r.getNode(ctx, neighborID, models.KindSemantic)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return nil, err
			}
			results = append(results, models.RelatedMemory{
				Memory:       *semanticFromNode(node),
				RelationType: e.Type,
				Direction:    direction,
				Depth:        current.depth + 1,
			})
			frontier = append(frontier, hop{id: neighborID, depth: current.depth + 1})
		}
	}

	return results, nil
}

// QueryEpisodic runs a graph-side filter query, returning hydrated memories
// ordered newest first.
func (r *Repository) QueryEpisodic(ctx context.Context, spec QuerySpec) ([]models.EpisodicMemory, error) {
	spec.Kind = models.KindEpisodic
	nodes, err := r.queryNodes(ctx, spec)
	if err != nil {
		return nil, err
	}
	memories := make([]models.EpisodicMemory, len(nodes))
	for i := range nodes {
		memories[i] = *episodicFromNode(&nodes[i])
	}
	return memories, nil
}

// --- internal plumbing ---

// doGraph wraps a graph call in the shared retry policy, surfacing exhausted
// budgets as ErrStoreUnavailable.
func (r *Repository) doGraph(ctx context.Context, op func(ctx context.Context) error) error {
	err := r.opts.Retry.Do(ctx, op)
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return errors.Join(ErrStoreUnavailable, err)
}

func (r *Repository) getNode(ctx context.Context, id string, kind models.MemoryKind) (*Node, error) {
	node, err := r.getAnyNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node.Kind != kind {
		return nil, fmt.Errorf("%w: %s is not a %s memory", ErrNotFound, id, kind)
	}
	return node, nil
}

func (r *Repository) getAnyNode(ctx context.Context, id string) (*Node, error) {
	var node *Node
	err := r.doGraph(ctx, func(ctx context.Context) error {
		var gerr error
		node, gerr = r.graph.GetNode(ctx, id)
		if errors.Is(gerr, ErrNotFound) {
			return retry.Permanent(gerr)
		}
		return gerr
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (r *Repository) verifyOwnedNode(ctx context.Context, id, userID string, kind models.MemoryKind) error {
	node, err := r.getNode(ctx, id, kind)
	if err != nil {
		return err
	}
	if getString(node.Fields, fieldUserID) != userID {
		return fmt.Errorf("%w: relationship target %s does not belong to user %s", ErrNotFound, id, userID)
	}
	return nil
}

func (r *Repository) edgesOf(ctx context.Context, id string) ([]Edge, error) {
	var edges []Edge
	err := r.doGraph(ctx, func(ctx context.Context) error {
		var gerr error
		edges, gerr = r.graph.EdgesOf(ctx, id)
		return gerr
	})
	return edges, err
}

func (r *Repository) queryNodes(ctx context.Context, spec QuerySpec) ([]Node, error) {
	var nodes []Node
	err := r.doGraph(ctx, func(ctx context.Context) error {
		var gerr error
		nodes, gerr = r.graph.Query(ctx, spec)
		return gerr
	})
	return nodes, err
}
