package neoupload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// nodeIDPattern is the alphabet an edge key may use for node ids. The
// arrow characters are deliberately excluded so the arrow token is
// unambiguous.
const nodeIDPattern = `[a-zA-Z0-9.,\-_ ]+`

var edgeKeyRegexp = regexp.MustCompile(`^(` + nodeIDPattern + `)(<-|->)(` + nodeIDPattern + `)$`)

// document is the raw top-level shape of the JSON input. Both mappings
// keep document insertion order; unknown top-level keys are ignored.
type document struct {
	Nodes *orderedmap.OrderedMap[string, json.RawMessage] `json:"nodes"`
	Edges *orderedmap.OrderedMap[string, json.RawMessage] `json:"edges"`
}

// itemSpec is the raw shape of a single node or edge entry.
type itemSpec struct {
	Label      *string         `json:"label"`
	Properties json.RawMessage `json:"properties"`
}

// ParseFile reads and parses the graph document at path. It returns a
// *FileError when the file cannot be read and otherwise behaves like
// Parse.
func ParseFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a graph document from JSON and validates it.
//
// It returns *ParseError for malformed JSON, a missing or non-string
// label, a malformed edge key, or an unsupported property value, and
// *ReferenceError for an edge naming a node id that is not in the
// document. Every error names the offending key or identifier.
func Parse(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("reading document: %v", err)}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if doc.Nodes == nil {
		return nil, &ParseError{Msg: `document has no "nodes" mapping`}
	}

	g := &Graph{
		Nodes: orderedmap.New[string, NodeSpec](),
	}

	for pair := doc.Nodes.Oldest(); pair != nil; pair = pair.Next() {
		spec, err := parseItem(fmt.Sprintf("node %q", pair.Key), pair.Value)
		if err != nil {
			return nil, err
		}
		g.Nodes.Set(pair.Key, NodeSpec{Label: spec.label, Properties: spec.properties})
	}

	if doc.Edges == nil {
		return g, nil
	}

	for pair := doc.Edges.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key

		match := edgeKeyRegexp.FindStringSubmatch(key)
		if match == nil {
			return nil, &ParseError{
				Key: key,
				Msg: fmt.Sprintf("edge key must have the form %q", "<id>-><id> or <id><-<id>"),
			}
		}
		left, arrow, right := match[1], match[2], match[3]

		sourceID, targetID := left, right
		if arrow == "<-" {
			sourceID, targetID = right, left
		}
		for _, id := range [2]string{left, right} {
			if _, ok := g.Nodes.Get(id); !ok {
				return nil, &ReferenceError{EdgeKey: key, NodeID: id}
			}
		}

		spec, err := parseItem(fmt.Sprintf("edge %q", key), pair.Value)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, EdgeSpec{
			Key:        key,
			SourceID:   sourceID,
			TargetID:   targetID,
			Label:      spec.label,
			Properties: spec.properties,
		})
	}

	return g, nil
}

type parsedItem struct {
	label      string
	properties map[string]Value
}

// parseItem validates one node or edge entry. where identifies the
// entry in error messages, e.g. `node "n1"`.
func parseItem(where string, raw json.RawMessage) (parsedItem, error) {
	var spec itemSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return parsedItem{}, &ParseError{Key: where, Msg: fmt.Sprintf("entry must be an object with a string label: %v", err)}
	}
	if spec.Label == nil || *spec.Label == "" {
		return parsedItem{}, &ParseError{Key: where, Msg: `missing required "label"`}
	}

	props, err := parseProperties(where, spec.Properties)
	if err != nil {
		return parsedItem{}, err
	}
	return parsedItem{label: *spec.Label, properties: props}, nil
}

// parseProperties validates a "properties" entry. An absent entry is an
// empty property set; anything that is not a mapping of accepted values
// is a *ParseError naming the offending property.
func parseProperties(where string, raw json.RawMessage) (map[string]Value, error) {
	if len(raw) == 0 {
		return map[string]Value{}, nil
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, &ParseError{Key: where, Msg: `"properties" must be a mapping`}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ParseError{Key: where, Msg: fmt.Sprintf(`"properties" must be a mapping: %v`, err)}
	}

	// Sorted so the first reported error is deterministic.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make(map[string]Value, len(fields))
	for _, k := range keys {
		v, err := parseValue(fields[k])
		if err != nil {
			return nil, &ParseError{
				Key: fmt.Sprintf("%s property %q", where, k),
				Msg: err.Error(),
			}
		}
		props[k] = v
	}
	return props, nil
}

// parseValue decodes a single property value, distinguishing integer
// from floating-point numbers the way the database does.
func parseValue(raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, fmt.Errorf("malformed value: %v", err)
	}
	native, err := toNative(v)
	if err != nil {
		return Value{}, err
	}
	return Value{v: native}, nil
}

// toNative converts a decoded JSON value into its driver-ready form,
// rejecting anything outside the accepted property types.
func toNative(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q is out of range", val.String())
		}
		return f, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			native, err := toNative(item)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			out[i] = native
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(val))
		for _, k := range keys {
			native, err := toNative(val[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = native
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("null is not a supported property value")
	default:
		return nil, fmt.Errorf("%T is not a supported property value", v)
	}
}
