package normalizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdflow/pkg/models"
)

func rawNode(id, nodeType, label string, connections any) RawNode {
	n := RawNode{}
	if id != "" {
		n["id"] = id
	}
	if nodeType != "" {
		n["type"] = nodeType
	}
	if label != "" {
		n["label"] = label
	}
	if connections != nil {
		n["connections"] = connections
	}
	return n
}

// rawFromNodes rebuilds raw records from normalized output, for the
// fixed-point test.
func rawFromNodes(nodes []models.WorkflowNode) []RawNode {
	raw := make([]RawNode, len(nodes))
	for i, n := range nodes {
		conns := make([]any, len(n.Connections))
		for j, c := range n.Connections {
			conns[j] = c
		}
		raw[i] = RawNode{
			"id":          n.ID,
			"type":        string(n.Type),
			"label":       n.Label,
			"x":           n.X,
			"y":           n.Y,
			"connections": conns,
		}
	}
	return raw
}

func nodeByID(t *testing.T, nodes []models.WorkflowNode, id string) models.WorkflowNode {
	t.Helper()
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not in result", id)
	return models.WorkflowNode{}
}

func TestNormalize_ThreeNodeRepair(t *testing.T) {
	// Begin->Fill form->Done with a single backward reference: the resolver
	// must drop n2->n1 and synthesize a connected start-to-end path.
	raw := []RawNode{
		rawNode("n1", "start", "Begin", nil),
		rawNode("n2", "process", "Fill form", []any{"n1"}),
		rawNode("n3", "end", "Done", nil),
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Nodes, 3)

	assert.Equal(t, []string{"n2"}, nodeByID(t, result.Nodes, "n1").Connections)
	assert.Equal(t, []string{"n3"}, nodeByID(t, result.Nodes, "n2").Connections)
	assert.Empty(t, nodeByID(t, result.Nodes, "n3").Connections)

	kinds := warningKinds(result.Warnings)
	assert.Contains(t, kinds, WarnBackward)
	assert.Contains(t, kinds, WarnSynthesized)

	// Main lane, declaration order.
	assert.Equal(t, 200.0, nodeByID(t, result.Nodes, "n1").X)
	assert.Equal(t, 500.0, nodeByID(t, result.Nodes, "n2").X)
	assert.Equal(t, 800.0, nodeByID(t, result.Nodes, "n3").X)
	for _, n := range result.Nodes {
		assert.Equal(t, 100.0, n.Y)
	}
}

func warningKinds(warnings []Warning) []WarningKind {
	kinds := make([]WarningKind, len(warnings))
	for i, w := range warnings {
		kinds[i] = w.Kind
	}
	return kinds
}

func TestNormalize_SchemaErrors(t *testing.T) {
	t.Run("unknown node type is rejected not coerced", func(t *testing.T) {
		raw := []RawNode{
			rawNode("n1", "start", "Begin", nil),
			rawNode("n2", "foo", "Mystery", nil),
		}
		_, err := Normalize(raw)
		require.Error(t, err)

		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "n2", serr.Node)
		assert.Equal(t, "type", serr.Field)
		assert.Contains(t, serr.Reason, "foo")
	})

	t.Run("duplicate ids", func(t *testing.T) {
		raw := []RawNode{
			rawNode("a", "start", "One", nil),
			rawNode("A", "process", "Two", nil),
		}
		_, err := Normalize(raw)
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "id", serr.Field)
	})

	t.Run("no start node", func(t *testing.T) {
		raw := []RawNode{
			rawNode("a", "process", "One", nil),
			rawNode("b", "end", "Two", nil),
		}
		_, err := Normalize(raw)
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "type", serr.Field)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Normalize(nil)
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "nodes", serr.Field)
	})
}

func TestNormalize_CoercesMissingFields(t *testing.T) {
	raw := []RawNode{
		{"type": "start"},
		{"label": "Review"},
		{"id": "finish", "type": "END"},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Nodes, 3)

	first := result.Nodes[0]
	assert.Equal(t, "node_0", first.ID)
	assert.Equal(t, models.NodeTypeStart, first.Type)
	assert.Equal(t, "Step 1", first.Label)

	second := result.Nodes[1]
	assert.Equal(t, "node_1", second.ID)
	assert.Equal(t, models.NodeTypeProcess, second.Type, "missing type defaults to process")
	assert.Equal(t, "Review", second.Label)

	third := result.Nodes[2]
	assert.Equal(t, models.NodeTypeEnd, third.Type, "type matching is case-insensitive")
}

func TestNormalize_ConnectionShapes(t *testing.T) {
	raw := []RawNode{
		rawNode("start", "start", "Start", "review"),
		rawNode("review", "process", "Review", []any{
			map[string]any{"target": " APPROVE ", "label": "Yes"},
			map[string]any{"label": "orphaned"},
			"ghost",
			42,
		}),
		rawNode("approve", "end", "Approved", nil),
	}

	result, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"review"}, nodeByID(t, result.Nodes, "start").Connections,
		"single-string connections are accepted")
	assert.Equal(t, []string{"approve"}, nodeByID(t, result.Nodes, "review").Connections,
		"object targets match case-insensitively and keep declared casing")

	kinds := warningKinds(result.Warnings)
	assert.Contains(t, kinds, WarnDangling)
	assert.Contains(t, kinds, WarnMalformed)
}

func TestNormalize_NoDanglingReferencesSurvive(t *testing.T) {
	raw := []RawNode{
		rawNode("a", "start", "A", []any{"missing", "b", "b"}),
		rawNode("b", "decision", "B", []any{"c", "nowhere", "d"}),
		rawNode("c", "process", "C", []any{"c"}),
		rawNode("d", "end", "D", nil),
	}

	result, err := Normalize(raw)
	require.NoError(t, err)

	ids := make(map[string]bool, len(result.Nodes))
	for _, n := range result.Nodes {
		ids[n.ID] = true
	}
	for _, n := range result.Nodes {
		for _, target := range n.Connections {
			assert.True(t, ids[target], "node %s points at unknown %s", n.ID, target)
		}
		if n.Type != models.NodeTypeEnd {
			assert.NotEmpty(t, n.Connections, "non-end node %s lost its outgoing edge", n.ID)
		}
	}

	// c's self reference was dropped, so it gets a synthesized edge to d.
	assert.Equal(t, []string{"d"}, nodeByID(t, result.Nodes, "c").Connections)
}

func TestNormalize_TrailingNodeStaysTerminal(t *testing.T) {
	raw := []RawNode{
		rawNode("a", "start", "A", nil),
		rawNode("b", "process", "B", nil),
	}

	result, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, nodeByID(t, result.Nodes, "a").Connections)
	assert.Empty(t, nodeByID(t, result.Nodes, "b").Connections,
		"nothing after b to synthesize toward")
	assert.Contains(t, warningKinds(result.Warnings), WarnTerminal)
}

func TestNormalize_LayoutBranchLanes(t *testing.T) {
	raw := []RawNode{
		rawNode("start", "start", "Start", []any{"check"}),
		rawNode("check", "decision", "Valid?", []any{"ok", "fix", "abort"}),
		rawNode("ok", "process", "Proceed", []any{"done"}),
		rawNode("fix", "process", "Fix it", []any{"done"}),
		rawNode("abort", "end", "Aborted", nil),
		rawNode("done", "end", "Done", nil),
	}

	result, err := Normalize(raw)
	require.NoError(t, err)

	start := nodeByID(t, result.Nodes, "start")
	check := nodeByID(t, result.Nodes, "check")
	ok := nodeByID(t, result.Nodes, "ok")
	fix := nodeByID(t, result.Nodes, "fix")
	abort := nodeByID(t, result.Nodes, "abort")

	assert.Equal(t, 200.0, start.X)
	assert.Equal(t, 500.0, check.X)
	assert.Equal(t, 100.0, check.Y)

	// First connection continues the main lane; alternates branch at the
	// decision's x.
	assert.Equal(t, 800.0, ok.X)
	assert.Equal(t, 100.0, ok.Y)
	assert.Equal(t, check.X, fix.X)
	assert.Equal(t, 300.0, fix.Y)
	assert.Equal(t, check.X, abort.X)
	assert.Equal(t, 50.0, abort.Y)
}

func TestNormalize_ExplicitCoordinatesKept(t *testing.T) {
	raw := []RawNode{
		{"id": "a", "type": "start", "label": "A", "x": 1234.0, "y": 56.0},
		{"id": "b", "type": "end", "label": "B", "x": math.NaN(), "y": 10.0},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)

	a := nodeByID(t, result.Nodes, "a")
	assert.Equal(t, 1234.0, a.X)
	assert.Equal(t, 56.0, a.Y)

	// NaN is unusable, so b falls back to an assigned main-lane slot.
	b := nodeByID(t, result.Nodes, "b")
	assert.Equal(t, 200.0, b.X)
	assert.Equal(t, 100.0, b.Y)
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := []RawNode{
		rawNode("start", "start", "Start", []any{"gate"}),
		rawNode("gate", "decision", "Gate", []any{"left", "right"}),
		rawNode("left", "process", "Left", []any{"finish"}),
		rawNode("right", "process", "Right", []any{"finish"}),
		rawNode("finish", "end", "Finish", nil),
	}

	first, err := Normalize(raw)
	require.NoError(t, err)

	for run := 0; run < 20; run++ {
		again, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, first.Nodes, again.Nodes, "run %d diverged", run)
	}
}

func TestNormalize_ValidatedOutputIsFixedPoint(t *testing.T) {
	raw := []RawNode{
		rawNode("start", "start", "Kick off", []any{"work"}),
		rawNode("work", "process", "Do work", nil),
		rawNode("finish", "end", "Wrap up", nil),
	}

	first, err := Normalize(raw)
	require.NoError(t, err)

	second, err := Normalize(rawFromNodes(first.Nodes))
	require.NoError(t, err)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Empty(t, second.Warnings, "already-normalized input needs no repair")
}
