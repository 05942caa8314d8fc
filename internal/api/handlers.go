// Package api contains the HTTP handlers for the PRD Flow REST service.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"prdflow/internal/auth"
	"prdflow/internal/config"
	"prdflow/internal/docparse"
	"prdflow/internal/normalizer"
	"prdflow/internal/repository"
	"prdflow/internal/services"
	"prdflow/pkg/models"
)

const version = "1.0.0"

// listLimit caps every list endpoint.
const listLimit = 1000

// Server holds the dependencies for the REST handlers.
type Server struct {
	cfg       *config.Config
	store     repository.Store
	auth      *auth.Auth
	analyses  *services.AnalysisService
	workflows *services.WorkflowService
}

// NewServer creates a new Server.
func NewServer(cfg *config.Config, store repository.Store, authn *auth.Auth, analyses *services.AnalysisService, workflows *services.WorkflowService) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		auth:      authn,
		analyses:  analyses,
		workflows: workflows,
	}
}

// RegisterRoutes mounts every REST route on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("", s.Root)
	api.GET("/health", s.Health)

	api.POST("/auth/register", s.Register)
	api.POST("/auth/login", s.Login)
	api.GET("/auth/me", s.Me, s.auth.Required)

	api.POST("/status", s.CreateStatusCheck)
	api.GET("/status", s.ListStatusChecks)

	api.POST("/analyze-document", s.AnalyzeDocument, s.auth.Optional)
	api.POST("/analyze-document-file", s.AnalyzeDocumentFile, s.auth.Optional)
	api.GET("/analyses", s.ListAnalyses, s.auth.Optional)
	api.GET("/analyses/:id", s.GetAnalysis, s.auth.Optional)

	api.POST("/generate-workflow", s.GenerateWorkflow, s.auth.Optional)
	api.GET("/workflows", s.ListWorkflows, s.auth.Optional)
	api.GET("/workflows/:id", s.GetWorkflow, s.auth.Optional)
	api.DELETE("/workflows/:id", s.DeleteWorkflow, s.auth.Optional)
}

// Root returns the service banner.
func (s *Server) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "PRD/BRD AI Analysis API - Ready!"})
}

// HealthResponse is the health endpoint's reply. Features is the matrix
// clients probe before enabling UI affordances.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	GeminiAPI string         `json:"gemini_api"`
	Database  string         `json:"database"`
	Features  map[string]any `json:"features"`
}

// Health reports service readiness and the supported feature matrix.
func (s *Server) Health(c echo.Context) error {
	status, database := "healthy", "ok"
	if err := s.store.Ping(c.Request().Context()); err != nil {
		status, database = "degraded", "unreachable"
	}

	gemini := "configured"
	if !s.cfg.GeminiConfigured() {
		gemini = "not_configured"
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   version,
		GeminiAPI: gemini,
		Database:  database,
		Features: map[string]any{
			"authentication":      true,
			"document_parsing":    docparse.Formats(),
			"analysis_types":      models.AnalysisTypes(),
			"workflow_generation": models.WorkflowTypes(),
		},
	})
}

// CreateStatusCheck records a client liveness ping.
func (s *Server) CreateStatusCheck(c echo.Context) error {
	var req models.StatusCheckCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	check := &models.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: req.ClientName,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertStatusCheck(c.Request().Context(), check); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save status check")
	}
	return c.JSON(http.StatusOK, check)
}

// ListStatusChecks returns recorded status checks, newest first.
func (s *Server) ListStatusChecks(c echo.Context) error {
	checks, err := s.store.ListStatusChecks(c.Request().Context(), listLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch status checks")
	}
	return c.JSON(http.StatusOK, checks)
}

// currentUserID returns the authenticated user's id, nil for anonymous
// callers.
func currentUserID(c echo.Context) *string {
	if user := auth.UserFromContext(c.Request().Context()); user != nil {
		return &user.ID
	}
	return nil
}

// aiError converts service-layer failures into the HTTP errors the API
// relays: upstream failures keep their status and message, graph schema
// violations are 422, anything else is a 500 with the given fallback detail.
func aiError(err error, fallback string) error {
	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		return echo.NewHTTPError(upstream.Status, upstream.Message)
	}
	var schemaErr *normalizer.SchemaError
	if errors.As(err, &schemaErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, schemaErr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}
