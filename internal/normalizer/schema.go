package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"prdflow/pkg/models"
)

// candidate is a validated node together with the bookkeeping the later
// stages need: the still-raw connections value and whether the input carried
// usable coordinates of its own.
type candidate struct {
	node        models.WorkflowNode
	connections any
	hasPosition bool
}

// validateNodes coerces raw candidate records into WorkflowNodes. Tolerable
// gaps are repaired (missing ids, labels, coordinates); values that cannot be
// repaired without corrupting the graph (unknown types, duplicate ids) fail
// with a SchemaError naming the node and field.
func validateNodes(raw []RawNode) ([]candidate, *SchemaError) {
	cands := make([]candidate, 0, len(raw))
	seen := make(map[string]string, len(raw)) // lowercase id -> original

	for i, rec := range raw {
		id := stringValue(rec["id"])
		if id == "" {
			id = fmt.Sprintf("node_%d", i)
		}

		key := strings.ToLower(id)
		if prev, dup := seen[key]; dup {
			return nil, &SchemaError{
				Node:   id,
				Field:  "id",
				Reason: fmt.Sprintf("duplicate of node %q", prev),
			}
		}
		seen[key] = id

		nodeType := models.NodeTypeProcess
		if v, present := rec["type"]; present {
			s := stringValue(v)
			if s == "" {
				return nil, &SchemaError{Node: id, Field: "type", Reason: "empty node type"}
			}
			parsed, ok := models.ParseNodeType(s)
			if !ok {
				return nil, &SchemaError{
					Node:   id,
					Field:  "type",
					Reason: fmt.Sprintf("unknown node type %q", s),
				}
			}
			nodeType = parsed
		}

		label := strings.TrimSpace(stringValue(rec["label"]))
		if label == "" {
			label = fmt.Sprintf("Step %d", i+1)
		}

		x, xOK := numberValue(rec["x"])
		y, yOK := numberValue(rec["y"])

		cands = append(cands, candidate{
			node: models.WorkflowNode{
				ID:          id,
				Type:        nodeType,
				Label:       label,
				X:           x,
				Y:           y,
				Connections: []string{},
			},
			connections: rec["connections"],
			hasPosition: xOK && yOK,
		})
	}

	return cands, nil
}

// stringValue extracts a trimmed string from a raw field, tolerating the
// few non-string shapes models emit for identifiers.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		if s == math.Trunc(s) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case int:
		return fmt.Sprintf("%d", s)
	default:
		return ""
	}
}

// numberValue reports a finite coordinate and whether the field held one.
// Missing, non-numeric, and non-finite values all defer to the layout stage.
func numberValue(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
