package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdflow/pkg/models"
)

func testUser(email string) *models.User {
	return &models.User{
		ID:             uuid.New().String(),
		Email:          email,
		Name:           "Test User",
		HashedPassword: "$2a$10$notarealhashnotarealhashnotarealhash",
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		IsActive:       true,
	}
}

func testWorkflow(userID *string, createdAt time.Time) *models.Workflow {
	return &models.Workflow{
		ID:   uuid.New().String(),
		Type: models.WorkflowTypeUserJourney,
		Nodes: []models.WorkflowNode{
			{ID: "start", Type: models.NodeTypeStart, Label: "Start", X: 200, Y: 100, Connections: []string{"end"}},
			{ID: "end", Type: models.NodeTypeEnd, Label: "Done", X: 500, Y: 100, Connections: []string{}},
		},
		DocumentContent: "Users sign up and finish onboarding.",
		DocumentLength:  36,
		CreatedAt:       createdAt,
		UserID:          userID,
	}
}

func testAnalysis(userID *string, createdAt time.Time) *models.DocumentAnalysis {
	return &models.DocumentAnalysis{
		ID:              uuid.New().String(),
		DocumentContent: "The PRD describes a checkout flow.",
		DocumentLength:  34,
		AnalysisType:    models.AnalysisTypeGapAnalysis,
		Result:          map[string]any{"summary": "solid draft", "completeness_score": "7"},
		CreatedAt:       createdAt,
		UserID:          userID,
	}
}

// runStoreSuite exercises the Store contract. Both implementations run it
// so scoping behavior cannot drift between them.
func runStoreSuite(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	alice := testUser("alice@example.com")
	bob := testUser("bob@example.com")

	t.Run("users", func(t *testing.T) {
		require.NoError(t, store.CreateUser(ctx, alice))
		require.NoError(t, store.CreateUser(ctx, bob))

		dup := testUser("alice@example.com")
		assert.ErrorIs(t, store.CreateUser(ctx, dup), ErrDuplicateEmail)

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)
		assert.Equal(t, alice.HashedPassword, byEmail.HashedPassword)
		assert.True(t, byEmail.IsActive)

		byID, err := store.GetUserByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", byID.Email)

		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetUserByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("analyses scoping", func(t *testing.T) {
		aliceAnalysis := testAnalysis(&alice.ID, now.Add(-2*time.Minute))
		bobAnalysis := testAnalysis(&bob.ID, now.Add(-time.Minute))
		publicAnalysis := testAnalysis(nil, now)
		require.NoError(t, store.InsertAnalysis(ctx, aliceAnalysis))
		require.NoError(t, store.InsertAnalysis(ctx, bobAnalysis))
		require.NoError(t, store.InsertAnalysis(ctx, publicAnalysis))

		// Anonymous callers see everything, newest first.
		all, err := store.ListAnalyses(ctx, nil, 100)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, publicAnalysis.ID, all[0].ID)
		assert.Equal(t, bobAnalysis.ID, all[1].ID)
		assert.Equal(t, aliceAnalysis.ID, all[2].ID)

		// Authenticated callers see only their own records.
		mine, err := store.ListAnalyses(ctx, &alice.ID, 100)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, aliceAnalysis.ID, mine[0].ID)
		assert.Equal(t, "solid draft", mine[0].Result["summary"])
		assert.WithinDuration(t, aliceAnalysis.CreatedAt, mine[0].CreatedAt, time.Second)

		// Foreign records look like they do not exist.
		_, err = store.GetAnalysis(ctx, bobAnalysis.ID, &alice.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		got, err := store.GetAnalysis(ctx, bobAnalysis.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, bobAnalysis.ID, got.ID)
	})

	t.Run("workflows lifecycle", func(t *testing.T) {
		aliceFlow := testWorkflow(&alice.ID, now.Add(-time.Minute))
		publicFlow := testWorkflow(nil, now)
		require.NoError(t, store.InsertWorkflow(ctx, aliceFlow))
		require.NoError(t, store.InsertWorkflow(ctx, publicFlow))

		all, err := store.ListWorkflows(ctx, nil, 100)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, publicFlow.ID, all[0].ID)

		got, err := store.GetWorkflow(ctx, aliceFlow.ID, &alice.ID)
		require.NoError(t, err)
		require.Len(t, got.Nodes, 2)
		assert.Equal(t, models.NodeTypeStart, got.Nodes[0].Type)
		assert.Equal(t, []string{"end"}, got.Nodes[0].Connections)
		assert.Equal(t, 200.0, got.Nodes[0].X)

		_, err = store.GetWorkflow(ctx, aliceFlow.ID, &bob.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		// Deletes are strictly owner-scoped: anonymous callers cannot
		// remove owned records, owners cannot remove foreign ones.
		assert.ErrorIs(t, store.DeleteWorkflow(ctx, aliceFlow.ID, nil), ErrNotFound)
		assert.ErrorIs(t, store.DeleteWorkflow(ctx, aliceFlow.ID, &bob.ID), ErrNotFound)

		require.NoError(t, store.DeleteWorkflow(ctx, aliceFlow.ID, &alice.ID))
		_, err = store.GetWorkflow(ctx, aliceFlow.ID, nil)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.DeleteWorkflow(ctx, publicFlow.ID, nil))
	})

	t.Run("status checks", func(t *testing.T) {
		first := &models.StatusCheck{ID: uuid.New().String(), ClientName: "probe-1", CreatedAt: now.Add(-time.Minute)}
		second := &models.StatusCheck{ID: uuid.New().String(), ClientName: "probe-2", CreatedAt: now}
		require.NoError(t, store.InsertStatusCheck(ctx, first))
		require.NoError(t, store.InsertStatusCheck(ctx, second))

		checks, err := store.ListStatusChecks(ctx, 1)
		require.NoError(t, err)
		require.Len(t, checks, 1)
		assert.Equal(t, "probe-2", checks[0].ClientName)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}
