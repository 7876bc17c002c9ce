package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"sync"

	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

type fakeGraph struct {
	mu    sync.Mutex
	nodes map[string]Node
	edges []Edge

	failAll   error
	failCount int // fail this many calls, then recover
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{nodes: make(map[string]Node)}
}

func (g *fakeGraph) maybeFail() error {
	if g.failAll != nil {
		return g.failAll
	}
	if g.failCount > 0 {
		g.failCount--
		return fmt.Errorf("graph: transient failure")
	}
	return nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (g *fakeGraph) CreateNode(_ context.Context, node Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return err
	}
	if _, exists := g.nodes[node.ID]; exists {
		return fmt.Errorf("graph: node %s already exists", node.ID)
	}
	g.nodes[node.ID] = Node{ID: node.ID, Kind: node.Kind, Fields: copyFields(node.Fields)}
	return nil
}

func (g *fakeGraph) UpdateNode(_ context.Context, id string, fields map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return err
	}
	node, ok := g.nodes[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		node.Fields[k] = v
	}
	return nil
}

func (g *fakeGraph) DeleteNode(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return err
	}
	delete(g.nodes, id)
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.FromID != id && e.ToID != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

func (g *fakeGraph) GetNode(_ context.Context, id string) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return nil, err
	}
	node, ok := g.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := Node{ID: node.ID, Kind: node.Kind, Fields: copyFields(node.Fields)}
	return &out, nil
}

func (g *fakeGraph) CreateEdge(_ context.Context, edge Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return err
	}
	for _, e := range g.edges {
		if e == edge {
			return nil
		}
	}
	g.edges = append(g.edges, edge)
	return nil
}

func (g *fakeGraph) DeleteEdge(_ context.Context, edge Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return err
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e != edge {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

func (g *fakeGraph) DeleteEdgesTo(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return err
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.ToID != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

func (g *fakeGraph) EdgesOf(_ context.Context, id string) ([]Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return nil, err
	}
	var out []Edge
	for _, e := range g.edges {
		if e.FromID == id || e.ToID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (g *fakeGraph) Query(_ context.Context, spec QuerySpec) ([]Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return nil, err
	}

	var out []Node
	for _, node := range g.nodes {
		if spec.Kind != "" && node.Kind != spec.Kind {
			continue
		}
		if getString(node.Fields, fieldUserID) != spec.UserID {
			continue
		}
		if spec.SessionID != "" && getString(node.Fields, fieldSessionID) != spec.SessionID {
			continue
		}
		ts := getTime(node.Fields, fieldTimestamp)
		if !spec.After.IsZero() && ts.Before(spec.After) {
			continue
		}
		if !spec.Before.IsZero() && ts.After(spec.Before) {
			continue
		}
		if len(spec.Tags) > 0 && !anyTagMatch(getStrings(node.Fields, fieldTags), spec.Tags) {
			continue
		}
		importance := getFloat(node.Fields, fieldImportance)
		if importance < spec.MinImportance {
			continue
		}
		if spec.MaxImportance > 0 && importance > spec.MaxImportance {
			continue
		}
		if spec.Category != "" && getString(node.Fields, fieldCategory) != spec.Category {
			continue
		}
		if spec.IndexState != "" && getString(node.Fields, fieldIndexState) != string(spec.IndexState) {
			continue
		}
		if spec.WithoutIncomingEdge != "" && g.hasIncomingEdge(node.ID, spec.WithoutIncomingEdge) {
			continue
		}
		out = append(out, Node{ID: node.ID, Kind: node.Kind, Fields: copyFields(node.Fields)})
	}

	sort.Slice(out, func(i, j int) bool {
		return getTime(out[i].Fields, fieldTimestamp).After(getTime(out[j].Fields, fieldTimestamp))
	})
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out, nil
}

func (g *fakeGraph) hasIncomingEdge(id string, relType models.RelationType) bool {
	for _, e := range g.edges {
		if e.ToID == id && e.Type == relType {
			return true
		}
	}
	return false
}

func (g *fakeGraph) Count(_ context.Context, kind models.MemoryKind, userID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.maybeFail(); err != nil {
		return 0, err
	}
	count := 0
	for _, node := range g.nodes {
		if node.Kind == kind && getString(node.Fields, fieldUserID) == userID {
			count++
		}
	}
	return count, nil
}

func anyTagMatch(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

type vectorEntry struct {
	vector   []float32
	metadata map[string]string
}

type fakeVector struct {
	mu      sync.Mutex
	entries map[string]vectorEntry
	failAll error
}

func newFakeVector() *fakeVector {
	return &fakeVector{entries: make(map[string]vectorEntry)}
}

func (v *fakeVector) Upsert(_ context.Context, id string, vector []float32, metadata map[string]string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failAll != nil {
		return v.failAll
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)
	meta := make(map[string]string, len(metadata))
	for k, val := range metadata {
		meta[k] = val
	}
	v.entries[id] = vectorEntry{vector: vec, metadata: meta}
	return nil
}

func (v *fakeVector) Delete(_ context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failAll != nil {
		return v.failAll
	}
	delete(v.entries, id)
	return nil
}

func (v *fakeVector) Query(_ context.Context, vector []float32, topK int, filter map[string]string, threshold float32) ([]VectorMatch, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failAll != nil {
		return nil, v.failAll
	}

	var matches []VectorMatch
	for id, entry := range v.entries {
		skip := false
		for k, want := range filter {
			if entry.metadata[k] != want {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		score := cosine(vector, entry.vector)
		if score >= threshold {
			matches = append(matches, VectorMatch{ID: id, Score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// fakeEmbedder returns a deterministic unit vector per input text. Pinned
// vectors let tests dial exact similarities between texts.
type fakeEmbedder struct {
	mu      sync.Mutex
	dims    int
	pinned  map[string][]float32
	failAll error
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims, pinned: make(map[string][]float32)}
}

func (e *fakeEmbedder) pin(text string, vector []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pinned[text] = normalize(vector)
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failAll != nil {
		return nil, e.failAll
	}
	if vec, ok := e.pinned[text]; ok {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out, nil
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float32, e.dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>32)-(1<<31)) / float32(1<<31)
	}
	return normalize(vec), nil
}

func (e *fakeEmbedder) Dimensions() int { return e.dims }

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

type fakeExtractor struct {
	mu         sync.Mutex
	candidates []models.ConceptCandidate
	err        error
	calls      int
}

func (x *fakeExtractor) ExtractConcepts(_ context.Context, batch []models.EpisodicMemory) ([]models.ConceptCandidate, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls++
	if x.err != nil {
		return nil, x.err
	}
	inBatch := make(map[string]bool, len(batch))
	for _, m := range batch {
		inBatch[m.ID] = true
	}
	var out []models.ConceptCandidate
	for _, c := range x.candidates {
		if inBatch[c.SourceMemoryID] {
			out = append(out, c)
		}
	}
	return out, nil
}
