package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// AnalysisService runs document analyses through the AI client and persists
// the results.
type AnalysisService struct {
	ai       AIClient
	store    repository.Store
	analyses metric.Int64Counter
}

// NewAnalysisService wires an analysis service over the given AI client and
// store.
func NewAnalysisService(ai AIClient, store repository.Store) *AnalysisService {
	meter := otel.Meter("prdflow/services")
	analyses, err := meter.Int64Counter(
		"prdflow_analyses_total",
		metric.WithDescription("Total number of document analyses completed"),
	)
	if err != nil {
		analyses = nil
	}
	return &AnalysisService{ai: ai, store: store, analyses: analyses}
}

// Analyze runs the requested analysis over the document and stores the
// result attributed to userID, nil meaning an anonymous caller.
func (s *AnalysisService) Analyze(ctx context.Context, req *models.AnalysisRequest, userID *string) (*models.DocumentAnalysis, error) {
	analysisType := models.ParseAnalysisType(req.AnalysisType)

	result, err := s.ai.AnalyzeDocument(ctx, req.DocumentContent, analysisType)
	if err != nil {
		return nil, err
	}

	analysis := &models.DocumentAnalysis{
		ID:              uuid.NewString(),
		DocumentName:    req.DocumentName,
		DocumentContent: req.DocumentContent,
		DocumentLength:  len(req.DocumentContent),
		AnalysisType:    analysisType,
		Result:          result,
		CreatedAt:       time.Now().UTC(),
		UserID:          userID,
	}
	if err := s.store.InsertAnalysis(ctx, analysis); err != nil {
		return nil, err
	}

	if s.analyses != nil {
		s.analyses.Add(ctx, 1, metric.WithAttributes(
			attribute.String("analysis_type", string(analysisType)),
		))
	}
	return analysis, nil
}

// List returns stored analyses visible to userID, newest first.
func (s *AnalysisService) List(ctx context.Context, userID *string, limit int64) ([]*models.DocumentAnalysis, error) {
	return s.store.ListAnalyses(ctx, userID, limit)
}

// Get returns one stored analysis visible to userID.
func (s *AnalysisService) Get(ctx context.Context, id string, userID *string) (*models.DocumentAnalysis, error) {
	return s.store.GetAnalysis(ctx, id, userID)
}
