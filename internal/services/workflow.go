package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"prdflow/internal/logging"
	"prdflow/internal/normalizer"
	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// WorkflowService turns documents into normalized workflow diagrams and
// persists them.
type WorkflowService struct {
	ai        AIClient
	store     repository.Store
	generated metric.Int64Counter
	fallbacks metric.Int64Counter
}

// NewWorkflowService wires a workflow service over the given AI client and
// store.
func NewWorkflowService(ai AIClient, store repository.Store) *WorkflowService {
	meter := otel.Meter("prdflow/services")
	generated, err := meter.Int64Counter(
		"prdflow_workflows_generated_total",
		metric.WithDescription("Total number of workflows generated"),
	)
	if err != nil {
		generated = nil
	}
	fallbacks, err := meter.Int64Counter(
		"prdflow_workflow_fallbacks_total",
		metric.WithDescription("Total number of workflows served from canned fallbacks"),
	)
	if err != nil {
		fallbacks = nil
	}
	return &WorkflowService{ai: ai, store: store, generated: generated, fallbacks: fallbacks}
}

// Generate produces a workflow diagram for the document and stores it
// attributed to userID, nil meaning an anonymous caller.
//
// Model output that cannot be decoded at all, or that decodes to too few
// nodes to draw, is replaced by a canned fallback graph. Output that decodes
// into a real candidate graph goes through the normalizer, and a schema
// violation there fails the request; a fallback would silently hide that the
// model misread the document.
func (s *WorkflowService) Generate(ctx context.Context, req *models.WorkflowRequest, userID *string) (*models.Workflow, error) {
	workflowType := models.ParseWorkflowType(req.WorkflowType)
	log := logging.FromContext(ctx)

	var nodes []models.WorkflowNode
	raw, err := s.ai.GenerateWorkflow(ctx, req.DocumentContent, workflowType)
	switch {
	case errors.Is(err, ErrUnparseableWorkflow):
		log.Warn("workflow output unparseable, serving fallback", "workflow_type", workflowType)
		nodes = s.fallback(ctx, req.DocumentContent, workflowType)
	case err != nil:
		return nil, err
	case len(raw) <= 2:
		log.Warn("workflow output too small to draw, serving fallback",
			"workflow_type", workflowType, "node_count", len(raw))
		nodes = s.fallback(ctx, req.DocumentContent, workflowType)
	default:
		result, err := normalizer.Normalize(raw)
		if err != nil {
			return nil, err
		}
		for _, w := range result.Warnings {
			log.Warn("workflow connection repaired", "workflow_type", workflowType, "detail", w.String())
		}
		nodes = result.Nodes
	}

	workflow := &models.Workflow{
		ID:              uuid.NewString(),
		Type:            workflowType,
		Nodes:           nodes,
		DocumentContent: req.DocumentContent,
		DocumentLength:  len(req.DocumentContent),
		CreatedAt:       time.Now().UTC(),
		UserID:          userID,
	}
	if err := s.store.InsertWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	if s.generated != nil {
		s.generated.Add(ctx, 1, metric.WithAttributes(
			attribute.String("workflow_type", string(workflowType)),
		))
	}
	return workflow, nil
}

func (s *WorkflowService) fallback(ctx context.Context, content string, workflowType models.WorkflowType) []models.WorkflowNode {
	if s.fallbacks != nil {
		s.fallbacks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("workflow_type", string(workflowType)),
		))
	}
	return FallbackWorkflow(content, workflowType)
}

// List returns stored workflows visible to userID, newest first.
func (s *WorkflowService) List(ctx context.Context, userID *string, limit int64) ([]*models.Workflow, error) {
	return s.store.ListWorkflows(ctx, userID, limit)
}

// Get returns one stored workflow visible to userID.
func (s *WorkflowService) Get(ctx context.Context, id string, userID *string) (*models.Workflow, error) {
	return s.store.GetWorkflow(ctx, id, userID)
}

// Delete removes a workflow owned by userID, where nil only matches
// ownerless workflows.
func (s *WorkflowService) Delete(ctx context.Context, id string, userID *string) error {
	return s.store.DeleteWorkflow(ctx, id, userID)
}
