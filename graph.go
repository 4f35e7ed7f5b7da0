// Package neoupload loads a JSON description of a directed labeled graph
// into a Neo4j database.
//
// A document maps node identifiers to labeled, property-carrying nodes
// and edge keys of the form "a->b" or "a<-b" to labeled relationships
// between them. The identifiers exist only inside the document; in the
// database a created node is referenced by its server-assigned element
// id.
package neoupload

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Graph is the in-memory form of one parsed document. It is read-only
// after parsing; Upload never mutates it.
type Graph struct {
	// Nodes maps document node id to its spec, preserving document
	// insertion order so replay is deterministic.
	Nodes *orderedmap.OrderedMap[string, NodeSpec]

	// Edges holds the document's edges in document order, with the
	// arrow token already resolved into SourceID/TargetID.
	Edges []EdgeSpec
}

// NodeSpec describes one node to create: a single label and an optional
// set of properties.
type NodeSpec struct {
	Label      string
	Properties map[string]Value
}

// EdgeSpec describes one directed relationship to create between two
// nodes of the same document.
type EdgeSpec struct {
	// Key is the original edge key from the document, kept for error
	// messages and logging.
	Key string

	// SourceID and TargetID are document node ids. For "a->b" the
	// source is a, for "a<-b" the source is b.
	SourceID string
	TargetID string

	Label      string
	Properties map[string]Value
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return g.Nodes.Len() }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Value is a property value restricted to the types Neo4j accepts:
// string, int64, float64, bool, list of Value, and map of string to
// Value. Values are only produced by the parser and by the constructors
// below, so a Value in hand is always of an accepted type.
type Value struct {
	v any
}

// String wraps a string property value.
func String(s string) Value { return Value{v: s} }

// Int wraps an integer property value.
func Int(i int64) Value { return Value{v: i} }

// Float wraps a floating-point property value.
func Float(f float64) Value { return Value{v: f} }

// Bool wraps a boolean property value.
func Bool(b bool) Value { return Value{v: b} }

// List wraps a list property value.
func List(vs ...Value) Value {
	natives := make([]any, len(vs))
	for i, v := range vs {
		natives[i] = v.v
	}
	return Value{v: natives}
}

// Map wraps a nested map property value.
func Map(m map[string]Value) Value {
	natives := make(map[string]any, len(m))
	for k, v := range m {
		natives[k] = v.v
	}
	return Value{v: natives}
}

// Native returns the driver-ready representation of the value: string,
// int64, float64, bool, []any, or map[string]any with the same
// restriction applied recursively.
func (v Value) Native() any { return v.v }

// queryParams converts a property set into the parameter map handed to
// the driver.
func queryParams(props map[string]Value) map[string]any {
	params := make(map[string]any, len(props))
	for k, v := range props {
		params[k] = v.Native()
	}
	return params
}
