package neoupload

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"
)

// createEdgeQuery matches both endpoints of a relationship by the
// element ids captured during node creation. Element ids identify the
// exact nodes this run created, so two nodes with identical labels and
// properties never collide. The relationship label is spliced into the
// query text because Cypher does not allow labels as parameters.
const createEdgeQuery = `MATCH (a) WHERE elementId(a) = $sourceId ` +
	`MATCH (b) WHERE elementId(b) = $targetId ` +
	`CREATE (a)-[r:%s $props]->(b)`

// UploadManager replays a parsed Graph against a database through a
// DBRunner, in a fixed order: optional clear, then all nodes, then all
// edges. The first failing statement aborts the run; whatever was
// created before it stays in the database.
type UploadManager struct {
	runner DBRunner
	log    *zap.Logger
}

// NewUploadManager creates a new instance of the UploadManager.
func NewUploadManager(runner DBRunner, logger *zap.Logger) *UploadManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadManager{runner: runner, log: logger}
}

// Upload runs the whole sequence against the database: when clear is
// true every existing node and relationship is deleted first, then the
// graph's nodes and edges are created in document order.
func (m *UploadManager) Upload(ctx context.Context, g *Graph, clear bool) error {
	if clear {
		if err := m.Clear(ctx); err != nil {
			return err
		}
	}

	handles, err := m.CreateNodes(ctx, g)
	if err != nil {
		return err
	}
	if err := m.CreateEdges(ctx, g, handles); err != nil {
		return err
	}

	m.log.Info("upload complete",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return nil
}

// Clear deletes every node and relationship in the target database
// with a single statement.
func (m *UploadManager) Clear(ctx context.Context) error {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", "")).
		DetachDelete("n").
		Build()
	if err != nil {
		return fmt.Errorf("could not build clear query: %w", err)
	}

	m.log.Info("clearing database")
	if _, err := m.runner.Run(ctx, query, params); err != nil {
		return &DatabaseError{Op: "clear", Err: err}
	}
	return nil
}

// CreateNodes issues one CREATE statement per node, in document order,
// and returns the server-assigned element id of each created node keyed
// by its document id. Edges are attached through these handles later.
func (m *UploadManager) CreateNodes(ctx context.Context, g *Graph) (map[string]string, error) {
	total := g.NodeCount()
	handles := make(map[string]string, total)

	done := 0
	for pair := g.Nodes.Oldest(); pair != nil; pair = pair.Next() {
		id, spec := pair.Key, pair.Value

		node := gocypher.N("n", spec.Label)
		if len(spec.Properties) > 0 {
			node = node.WithProperties(queryParams(spec.Properties))
		}
		query, params, err := gocypher.NewQueryBuilder().
			Create(node).
			Return("n").
			Build()
		if err != nil {
			return nil, fmt.Errorf("could not build create query for node %q: %w", id, err)
		}

		m.log.Debug("creating node",
			zap.String("id", id),
			zap.String("query", query),
		)
		records, err := m.runner.Run(ctx, query, params)
		if err != nil {
			return nil, &DatabaseError{Op: fmt.Sprintf("create node %q", id), Err: err}
		}

		elementID, err := nodeElementID(records)
		if err != nil {
			return nil, &DatabaseError{Op: fmt.Sprintf("create node %q", id), Err: err}
		}
		handles[id] = elementID

		done++
		m.log.Debug("nodes", zap.Int("done", done), zap.Int("total", total))
	}

	m.log.Info("nodes created", zap.Int("count", total))
	return handles, nil
}

// CreateEdges issues one CREATE statement per edge, in document order,
// attaching each relationship between the nodes whose handles were
// captured by CreateNodes.
func (m *UploadManager) CreateEdges(ctx context.Context, g *Graph, handles map[string]string) error {
	total := g.EdgeCount()

	for i, edge := range g.Edges {
		sourceID, ok := handles[edge.SourceID]
		if !ok {
			return &ReferenceError{EdgeKey: edge.Key, NodeID: edge.SourceID}
		}
		targetID, ok := handles[edge.TargetID]
		if !ok {
			return &ReferenceError{EdgeKey: edge.Key, NodeID: edge.TargetID}
		}

		query := fmt.Sprintf(createEdgeQuery, quoteLabel(edge.Label))
		params := map[string]any{
			"sourceId": sourceID,
			"targetId": targetID,
			"props":    queryParams(edge.Properties),
		}

		m.log.Debug("creating edge",
			zap.String("key", edge.Key),
			zap.String("query", query),
		)
		if _, err := m.runner.Run(ctx, query, params); err != nil {
			return &DatabaseError{Op: fmt.Sprintf("create edge %q", edge.Key), Err: err}
		}

		m.log.Debug("edges", zap.Int("done", i+1), zap.Int("total", total))
	}

	m.log.Info("edges created", zap.Int("count", total))
	return nil
}

// Stats returns the total number of nodes and relationships currently
// in the target database.
func (m *UploadManager) Stats(ctx context.Context) (nodes, edges int64, err error) {
	nodes, err = m.count(ctx, "MATCH (n) RETURN count(n) AS count")
	if err != nil {
		return 0, 0, err
	}
	edges, err = m.count(ctx, "MATCH ()-[r]->() RETURN count(r) AS count")
	if err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

func (m *UploadManager) count(ctx context.Context, query string) (int64, error) {
	records, err := m.runner.Run(ctx, query, nil)
	if err != nil {
		return 0, &DatabaseError{Op: "count", Err: err}
	}
	if len(records) != 1 {
		return 0, &DatabaseError{Op: "count", Err: fmt.Errorf("expected 1 record but found %d", len(records))}
	}

	value, ok := records[0].Get("count")
	if !ok {
		return 0, &DatabaseError{Op: "count", Err: fmt.Errorf("could not find return value 'count' in query result")}
	}
	count, ok := value.(int64)
	if !ok {
		return 0, &DatabaseError{Op: "count", Err: fmt.Errorf("return value 'count' is not an integer")}
	}
	return count, nil
}

// nodeElementID extracts the element id of the node returned by a
// create statement.
func nodeElementID(records []*neo4j.Record) (string, error) {
	if len(records) != 1 {
		return "", fmt.Errorf("expected 1 record but found %d", len(records))
	}
	value, ok := records[0].Get("n")
	if !ok {
		return "", fmt.Errorf("could not find return value 'n' in query result")
	}
	node, ok := value.(neo4j.Node)
	if !ok {
		return "", fmt.Errorf("return value 'n' is not a node")
	}
	return node.ElementId, nil
}

// quoteLabel makes a label safe to splice into query text.
func quoteLabel(label string) string {
	return "`" + strings.ReplaceAll(label, "`", "``") + "`"
}
