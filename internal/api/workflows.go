package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// GenerateWorkflow turns a document into a normalized workflow diagram.
func (s *Server) GenerateWorkflow(c echo.Context) error {
	var req models.WorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	workflow, err := s.workflows.Generate(c.Request().Context(), &req, currentUserID(c))
	if err != nil {
		return aiError(err, "Workflow generation failed")
	}
	return c.JSON(http.StatusOK, workflow.Response())
}

// ListWorkflows returns stored workflows: the caller's own when
// authenticated, everything otherwise.
func (s *Server) ListWorkflows(c echo.Context) error {
	workflows, err := s.workflows.List(c.Request().Context(), currentUserID(c), listLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch workflows")
	}
	return c.JSON(http.StatusOK, workflows)
}

// GetWorkflow returns one stored workflow. Records owned by someone else
// answer 404, same as records that do not exist.
func (s *Server) GetWorkflow(c echo.Context) error {
	workflow, err := s.workflows.Get(c.Request().Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Workflow not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch workflow")
	}
	return c.JSON(http.StatusOK, workflow)
}

// DeleteWorkflow removes a workflow the caller owns. Anonymous callers can
// only delete ownerless workflows.
func (s *Server) DeleteWorkflow(c echo.Context) error {
	err := s.workflows.Delete(c.Request().Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Workflow not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete workflow")
	}
	return c.NoContent(http.StatusNoContent)
}
