package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdflow/internal/logging"
	"prdflow/internal/normalizer"
	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// stubAI is a canned AIClient for exercising the services without the API.
type stubAI struct {
	analysis    map[string]any
	analysisErr error
	rawNodes    []normalizer.RawNode
	rawErr      error

	gotDocument     string
	gotAnalysisType models.AnalysisType
	gotWorkflowType models.WorkflowType
}

func (s *stubAI) AnalyzeDocument(_ context.Context, document string, analysisType models.AnalysisType) (map[string]any, error) {
	s.gotDocument = document
	s.gotAnalysisType = analysisType
	return s.analysis, s.analysisErr
}

func (s *stubAI) GenerateWorkflow(_ context.Context, document string, workflowType models.WorkflowType) ([]normalizer.RawNode, error) {
	s.gotDocument = document
	s.gotWorkflowType = workflowType
	return s.rawNodes, s.rawErr
}

func testContext() context.Context {
	return logging.WithContext(context.Background(), logging.Nop())
}

func TestAnalysisService_Analyze(t *testing.T) {
	ctx := testContext()
	ai := &stubAI{analysis: map[string]any{"business_gaps": []any{"no pricing model"}}}
	store := repository.NewMemoryStore()
	svc := NewAnalysisService(ai, store)

	req := &models.AnalysisRequest{
		DocumentContent: "The product lets teams draft PRDs together.",
		AnalysisType:    "gap_analysis",
		DocumentName:    "prd.txt",
	}

	analysis, err := svc.Analyze(ctx, req, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, models.AnalysisTypeGapAnalysis, analysis.AnalysisType)
	assert.Equal(t, "prd.txt", analysis.DocumentName)
	assert.Equal(t, len(req.DocumentContent), analysis.DocumentLength)
	assert.Equal(t, ai.analysis, analysis.Result)
	assert.Nil(t, analysis.UserID)
	assert.Equal(t, req.DocumentContent, ai.gotDocument)

	stored, err := store.GetAnalysis(ctx, analysis.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, analysis.ID, stored.ID)
}

func TestAnalysisService_UnknownTypeFallsBackToGapAnalysis(t *testing.T) {
	ai := &stubAI{analysis: map[string]any{}}
	svc := NewAnalysisService(ai, repository.NewMemoryStore())

	req := &models.AnalysisRequest{DocumentContent: "doc", AnalysisType: "vibes_check"}
	analysis, err := svc.Analyze(testContext(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisTypeGapAnalysis, ai.gotAnalysisType)
	assert.Equal(t, models.AnalysisTypeGapAnalysis, analysis.AnalysisType)
}

func TestAnalysisService_UpstreamErrorStoresNothing(t *testing.T) {
	ctx := testContext()
	ai := &stubAI{analysisErr: &UpstreamError{Status: http.StatusServiceUnavailable, Message: "overloaded"}}
	store := repository.NewMemoryStore()
	svc := NewAnalysisService(ai, store)

	_, err := svc.Analyze(ctx, &models.AnalysisRequest{DocumentContent: "doc"}, nil)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)

	analyses, err := store.ListAnalyses(ctx, nil, 50)
	require.NoError(t, err)
	assert.Empty(t, analyses)
}

func TestAnalysisService_AttributesOwner(t *testing.T) {
	ctx := testContext()
	ai := &stubAI{analysis: map[string]any{"executive_summary": "short"}}
	store := repository.NewMemoryStore()
	svc := NewAnalysisService(ai, store)

	owner := "user-123"
	analysis, err := svc.Analyze(ctx, &models.AnalysisRequest{DocumentContent: "doc", AnalysisType: "summary"}, &owner)
	require.NoError(t, err)
	require.NotNil(t, analysis.UserID)
	assert.Equal(t, owner, *analysis.UserID)

	mine, err := svc.List(ctx, &owner, 50)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, analysis.ID, mine[0].ID)
}
