package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"prdflow/internal/docparse"
	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// AnalyzeDocument runs an AI analysis over pasted document text.
func (s *Server) AnalyzeDocument(c echo.Context) error {
	var req models.AnalysisRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	analysis, err := s.analyses.Analyze(c.Request().Context(), &req, currentUserID(c))
	if err != nil {
		return aiError(err, "Analysis failed")
	}
	return c.JSON(http.StatusOK, analysis.Response())
}

// AnalyzeDocumentFile extracts text from an uploaded document and analyzes
// it. The analysis_type form field defaults to gap_analysis when absent.
func (s *Server) AnalyzeDocumentFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A document file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}

	content, err := docparse.Parse(fileHeader.Filename, data)
	switch {
	case errors.Is(err, docparse.ErrUnsupportedType):
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file type. Please upload PDF, DOCX, TXT, or MD files.")
	case errors.Is(err, docparse.ErrEmptyDocument):
		return echo.NewHTTPError(http.StatusBadRequest, "No readable content found in the file")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to parse document: "+err.Error())
	}

	req := &models.AnalysisRequest{
		DocumentContent: content,
		AnalysisType:    c.FormValue("analysis_type"),
		DocumentName:    fileHeader.Filename,
	}
	analysis, err := s.analyses.Analyze(c.Request().Context(), req, currentUserID(c))
	if err != nil {
		return aiError(err, "File analysis failed")
	}
	return c.JSON(http.StatusOK, analysis.Response())
}

// ListAnalyses returns stored analyses: the caller's own when authenticated,
// everything otherwise.
func (s *Server) ListAnalyses(c echo.Context) error {
	analyses, err := s.analyses.List(c.Request().Context(), currentUserID(c), listLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch analyses")
	}
	return c.JSON(http.StatusOK, analyses)
}

// GetAnalysis returns one stored analysis. Records owned by someone else
// answer 404, same as records that do not exist.
func (s *Server) GetAnalysis(c echo.Context) error {
	analysis, err := s.analyses.Get(c.Request().Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Analysis not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch analysis")
	}
	return c.JSON(http.StatusOK, analysis)
}
