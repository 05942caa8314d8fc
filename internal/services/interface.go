package services

import (
	"context"
	"net/http"

	"prdflow/internal/normalizer"
	"prdflow/pkg/models"
)

// AIClient is an interface for the generative model backend.
type AIClient interface {
	// AnalyzeDocument runs one analysis prompt over the document text and
	// returns the model's structured result.
	AnalyzeDocument(ctx context.Context, document string, analysisType models.AnalysisType) (map[string]any, error)
	// GenerateWorkflow asks the model for workflow nodes and returns them
	// as raw, unvalidated node maps. Returns ErrUnparseableWorkflow when
	// the reply cannot be decoded into node maps at all.
	GenerateWorkflow(ctx context.Context, document string, workflowType models.WorkflowType) ([]normalizer.RawNode, error)
}

// Unconfigured is the AIClient used when no Gemini API key is set. Every
// call answers 503 so the rest of the API stays usable without a key.
type Unconfigured struct{}

func (Unconfigured) AnalyzeDocument(context.Context, string, models.AnalysisType) (map[string]any, error) {
	return nil, errUnconfigured()
}

func (Unconfigured) GenerateWorkflow(context.Context, string, models.WorkflowType) ([]normalizer.RawNode, error) {
	return nil, errUnconfigured()
}

func errUnconfigured() error {
	return &UpstreamError{
		Status:  http.StatusServiceUnavailable,
		Message: "AI analysis is not configured. Set GEMINI_API_KEY to enable it.",
	}
}
