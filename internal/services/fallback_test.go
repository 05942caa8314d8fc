package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdflow/pkg/models"
)

func TestFallbackWorkflow_KeywordRouting(t *testing.T) {
	cases := []struct {
		name         string
		content      string
		workflowType models.WorkflowType
		wantNodes    int
		wantFirst    string
	}{
		{"ecommerce journey", "PRD for the shopping cart and checkout revamp", models.WorkflowTypeUserJourney, 11, "User Opens App"},
		{"social journey", "Social scheduling: users draft a post and publish later", models.WorkflowTypeUserJourney, 9, "User Login"},
		{"generic journey", "An unremarkable requirements document", models.WorkflowTypeUserJourney, 7, "User Entry"},
		{"support blueprint", "Customer support ticket triage requirements", models.WorkflowTypeServiceBlueprint, 13, "Service Request"},
		{"generic blueprint", "An unremarkable requirements document", models.WorkflowTypeServiceBlueprint, 9, "Service Trigger"},
		{"api feature flow", "Partner API integration requirements", models.WorkflowTypeFeatureFlow, 12, "API Request"},
		{"generic feature flow", "An unremarkable requirements document", models.WorkflowTypeFeatureFlow, 9, "Feature Trigger"},
		{"unknown flavor", "An unremarkable requirements document", models.WorkflowType("mystery"), 6, "Start"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nodes := FallbackWorkflow(tc.content, tc.workflowType)
			require.Len(t, nodes, tc.wantNodes)
			assert.Equal(t, tc.wantFirst, nodes[0].Label)
			assertRenderable(t, nodes)
		})
	}
}

// assertRenderable checks the invariants the frontend renderer relies on:
// unique ids, a start node, resolvable connections, and terminal end nodes.
func assertRenderable(t *testing.T, nodes []models.WorkflowNode) {
	t.Helper()

	ids := make(map[string]bool, len(nodes))
	hasStart := false
	for _, n := range nodes {
		assert.False(t, ids[n.ID], "duplicate node id %q", n.ID)
		ids[n.ID] = true
		if n.Type == models.NodeTypeStart {
			hasStart = true
		}
	}
	assert.True(t, hasStart, "graph has no start node")

	for _, n := range nodes {
		require.NotNil(t, n.Connections, "node %q has nil connections", n.ID)
		if n.Type == models.NodeTypeEnd {
			assert.Empty(t, n.Connections, "end node %q has outgoing connections", n.ID)
			continue
		}
		assert.NotEmpty(t, n.Connections, "node %q has no outgoing connections", n.ID)
		for _, target := range n.Connections {
			assert.True(t, ids[target], "node %q connects to unknown node %q", n.ID, target)
		}
	}
}

// Canned graphs may loop back to earlier nodes (payment retries, content
// edits). They skip normalization precisely to keep those edges.
func TestFallbackWorkflow_KeepsBackwardEdges(t *testing.T) {
	nodes := FallbackWorkflow("PRD for the shopping cart revamp", models.WorkflowTypeUserJourney)

	var retry *models.WorkflowNode
	for i := range nodes {
		if nodes[i].ID == "retry" {
			retry = &nodes[i]
			break
		}
	}
	require.NotNil(t, retry, "ecommerce journey is missing its retry node")
	assert.Contains(t, retry.Connections, "payment")
}
