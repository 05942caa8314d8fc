// Package normalizer coerces untrusted, semi-structured model output into
// strict renderable workflow graphs. It is a pure three-stage pipeline:
// schema validation, connection resolution, then deterministic layout.
// Recoverable problems accumulate as warnings; only violations that would
// corrupt the graph contract abort with a SchemaError. There is no I/O and
// no shared state, so concurrent requests need no coordination.
package normalizer

import (
	"prdflow/pkg/models"
)

// RawNode is one untyped candidate node record as decoded from model output.
type RawNode = map[string]any

// Result is a normalized workflow graph plus the warnings accumulated while
// producing it. When Normalize returns an error the Result is empty; no
// partially repaired graph ever escapes the pipeline.
type Result struct {
	Nodes    []models.WorkflowNode
	Warnings []Warning
}

// Normalize runs validate, resolve, and layout over raw node records. On
// success every invariant of the graph contract holds on the output: at
// least one start node, every non-end node has an outgoing connection, no
// connection dangles, and all coordinates are finite.
func Normalize(raw []RawNode) (Result, error) {
	if len(raw) == 0 {
		return Result{}, &SchemaError{Field: "nodes", Reason: "workflow has no nodes"}
	}

	cands, serr := validateNodes(raw)
	if serr != nil {
		return Result{}, serr
	}

	if !hasStart(cands) {
		return Result{}, &SchemaError{Field: "type", Reason: "workflow has no start node"}
	}

	warnings := resolveConnections(cands)
	assignLayout(cands)

	nodes := make([]models.WorkflowNode, len(cands))
	for i, c := range cands {
		nodes[i] = c.node
	}
	return Result{Nodes: nodes, Warnings: warnings}, nil
}

func hasStart(cands []candidate) bool {
	for _, c := range cands {
		if c.node.Type == models.NodeTypeStart {
			return true
		}
	}
	return false
}
