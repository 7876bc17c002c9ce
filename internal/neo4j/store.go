package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
)

// Store implements memory.GraphStore on Neo4j. Nodes carry a single :Memory
// label with the kind as a property; relationship types are written verbatim
// as Cypher relationship types.
type Store struct {
	client *Client
}

// NewStore creates a graph store over an established client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// CreateNode writes a memory node with its full property bag.
func (s *Store) CreateNode(ctx context.Context, node memory.Node) error {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `
CREATE (m:Memory {id: $id, kind: $kind})
SET m += $fields
RETURN m.id
`
	result, err := session.Run(ctx, cypher, map[string]any{
		"id":     node.ID,
		"kind":   string(node.Kind),
		"fields": node.Fields,
	})
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return fmt.Errorf("result iteration error: %w", err)
		}
		return fmt.Errorf("no result returned from create")
	}
	return nil
}

// UpdateNode merges the given properties into an existing node.
func (s *Store) UpdateNode(ctx context.Context, id string, fields map[string]any) error {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `
MATCH (m:Memory {id: $id})
SET m += $fields
RETURN m.id
`
	result, err := session.Run(ctx, cypher, map[string]any{
		"id":     id,
		"fields": fields,
	})
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return fmt.Errorf("result iteration error: %w", err)
		}
		return fmt.Errorf("%w: %s", memory.ErrNotFound, id)
	}
	return nil
}

// DeleteNode removes a node and every edge attached to it.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `
MATCH (m:Memory {id: $id})
DETACH DELETE m
`
	_, err := session.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// GetNode retrieves a node by id.
func (s *Store) GetNode(ctx context.Context, id string) (*memory.Node, error) {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `MATCH (m:Memory {id: $id}) RETURN m`
	result, err := session.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", memory.ErrNotFound, id)
	}
	raw, _ := result.Record().Get("m")
	node := propsToNode(raw.(neo4j.Node))
	return &node, nil
}

// CreateEdge merges a typed relationship between two nodes. MERGE keeps edge
// writes idempotent, including self-referencing lineage markers.
func (s *Store) CreateEdge(ctx context.Context, edge memory.Edge) error {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := fmt.Sprintf(`
MATCH (a:Memory {id: $from_id})
MATCH (b:Memory {id: $to_id})
MERGE (a)-[r:%s]->(b)
RETURN r
`, edge.Type)

	result, err := session.Run(ctx, cypher, map[string]any{
		"from_id": edge.FromID,
		"to_id":   edge.ToID,
	})
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return fmt.Errorf("result iteration error: %w", err)
		}
		return fmt.Errorf("%w: edge endpoint missing (%s -> %s)", memory.ErrNotFound, edge.FromID, edge.ToID)
	}
	return nil
}

// DeleteEdge removes one typed relationship.
func (s *Store) DeleteEdge(ctx context.Context, edge memory.Edge) error {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := fmt.Sprintf(`
MATCH (a:Memory {id: $from_id})-[r:%s]->(b:Memory {id: $to_id})
DELETE r
`, edge.Type)

	_, err := session.Run(ctx, cypher, map[string]any{
		"from_id": edge.FromID,
		"to_id":   edge.ToID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	return nil
}

// DeleteEdgesTo removes all relationships pointing at a node.
func (s *Store) DeleteEdgesTo(ctx context.Context, id string) error {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `
MATCH ()-[r]->(m:Memory {id: $id})
DELETE r
`
	_, err := session.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete relationships: %w", err)
	}
	return nil
}

// EdgesOf returns all relationships touching a node, in both directions.
func (s *Store) EdgesOf(ctx context.Context, id string) ([]memory.Edge, error) {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `
MATCH (m:Memory {id: $id})-[r]-(n:Memory)
RETURN DISTINCT startNode(r).id as from_id, endNode(r).id as to_id, type(r) as rel_type
`
	result, err := session.Run(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var edges []memory.Edge
	for result.Next(ctx) {
		record := result.Record()
		fromID, _ := record.Get("from_id")
		toID, _ := record.Get("to_id")
		relType, _ := record.Get("rel_type")

		from, ok1 := fromID.(string)
		to, ok2 := toID.(string)
		typ, ok3 := relType.(string)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		edges = append(edges, memory.Edge{
			FromID: from,
			ToID:   to,
			Type:   models.RelationType(typ),
		})
	}
	return edges, result.Err()
}

// Query filters memory nodes graph-side, newest first.
func (s *Store) Query(ctx context.Context, spec memory.QuerySpec) ([]memory.Node, error) {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	clauses := []string{"m.user_id = $user_id"}
	params := map[string]any{"user_id": spec.UserID}

	if spec.Kind != "" {
		clauses = append(clauses, "m.kind = $kind")
		params["kind"] = string(spec.Kind)
	}
	if spec.SessionID != "" {
		clauses = append(clauses, "m.session_id = $session_id")
		params["session_id"] = spec.SessionID
	}
	if !spec.After.IsZero() {
		clauses = append(clauses, "m.timestamp >= datetime($after)")
		params["after"] = spec.After.UTC().Format(time.RFC3339Nano)
	}
	if !spec.Before.IsZero() {
		clauses = append(clauses, "m.timestamp <= datetime($before)")
		params["before"] = spec.Before.UTC().Format(time.RFC3339Nano)
	}
	if len(spec.Tags) > 0 {
		clauses = append(clauses, "any(t IN $tags WHERE t IN m.tags)")
		params["tags"] = spec.Tags
	}
	if spec.MinImportance > 0 {
		clauses = append(clauses, "m.importance >= $min_importance")
		params["min_importance"] = spec.MinImportance
	}
	if spec.MaxImportance > 0 {
		clauses = append(clauses, "m.importance <= $max_importance")
		params["max_importance"] = spec.MaxImportance
	}
	if spec.Category != "" {
		clauses = append(clauses, "m.category = $category")
		params["category"] = spec.Category
	}
	if spec.IndexState != "" {
		clauses = append(clauses, "m.index_state = $index_state")
		params["index_state"] = string(spec.IndexState)
	}
	if spec.WithoutIncomingEdge != "" {
		clauses = append(clauses, fmt.Sprintf("NOT EXISTS { MATCH ()-[:%s]->(m) }", spec.WithoutIncomingEdge))
	}

	limitClause := ""
	if spec.Limit > 0 {
		limitClause = "LIMIT $limit"
		params["limit"] = spec.Limit
	}

	cypher := fmt.Sprintf(`
MATCH (m:Memory)
WHERE %s
RETURN m
ORDER BY m.timestamp DESC
%s
`, strings.Join(clauses, " AND "), limitClause)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var nodes []memory.Node
	for result.Next(ctx) {
		raw, _ := result.Record().Get("m")
		nodes = append(nodes, propsToNode(raw.(neo4j.Node)))
	}
	return nodes, result.Err()
}

// Count returns the number of a user's nodes of one kind.
func (s *Store) Count(ctx context.Context, kind models.MemoryKind, userID string) (int, error) {
	session := s.client.Session(ctx)
	defer session.Close(ctx)

	cypher := `
MATCH (m:Memory {kind: $kind, user_id: $user_id})
RETURN count(m) as total
`
	result, err := session.Run(ctx, cypher, map[string]any{
		"kind":    string(kind),
		"user_id": userID,
	})
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	total, _ := result.Record().Get("total")
	if n, ok := total.(int64); ok {
		return int(n), nil
	}
	return 0, nil
}

// propsToNode converts a Neo4j node to a memory node. id and kind live
// alongside the domain fields in the property map; they are lifted out so the
// field bag holds only domain data.
func propsToNode(node neo4j.Node) memory.Node {
	props := node.Props

	out := memory.Node{
		Fields: make(map[string]any, len(props)),
	}
	for k, v := range props {
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				out.ID = s
			}
		case "kind":
			if s, ok := v.(string); ok {
				out.Kind = models.MemoryKind(s)
			}
		default:
			out.Fields[k] = v
		}
	}
	return out
}
