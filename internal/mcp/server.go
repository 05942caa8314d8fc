// Package mcp exposes document analysis and workflow generation as MCP
// tools so agent clients can drive the service over SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"prdflow/internal/services"
	"prdflow/pkg/models"
)

// Tool calls carry no bearer token, so everything runs as the anonymous
// caller: records are stored without an owner and listings see all records.
type Server struct {
	mcpServer *server.MCPServer
	analyses  *services.AnalysisService
	workflows *services.WorkflowService
}

func NewServer(analyses *services.AnalysisService, workflows *services.WorkflowService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"PRD Flow",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		analyses:  analyses,
		workflows: workflows,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"analyze_document",
			mcp.WithDescription("Analyze a PRD/BRD document for gaps, requirements, or a summary"),
			mcp.WithString("document_content", mcp.Required(), mcp.Description("The full text of the document to analyze")),
			mcp.WithString("analysis_type", mcp.Description("One of gap_analysis, requirements_extraction, summary (default gap_analysis)")),
			mcp.WithString("document_name", mcp.Description("Optional name to store with the analysis")),
		),
		s.handleAnalyzeDocument,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"generate_workflow",
			mcp.WithDescription("Generate a workflow diagram from a PRD/BRD document"),
			mcp.WithString("document_content", mcp.Required(), mcp.Description("The full text of the document to diagram")),
			mcp.WithString("workflow_type", mcp.Description("One of user_journey, service_blueprint, feature_flow (default user_journey)")),
		),
		s.handleGenerateWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List previously generated workflows"),
			mcp.WithNumber("limit", mcp.Description("Maximum number of workflows to return (default 100)")),
		),
		s.handleListWorkflows,
	)
}

func (s *Server) handleAnalyzeDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	content, ok := args["document_content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("Missing required parameter: document_content"), nil
	}

	req := &models.AnalysisRequest{DocumentContent: content}
	if v, ok := args["analysis_type"].(string); ok {
		req.AnalysisType = v
	}
	if v, ok := args["document_name"].(string); ok {
		req.DocumentName = v
	}

	analysis, err := s.analyses.Analyze(ctx, req, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze document: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(analysis.Response())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGenerateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	content, ok := args["document_content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("Missing required parameter: document_content"), nil
	}

	req := &models.WorkflowRequest{DocumentContent: content}
	if v, ok := args["workflow_type"].(string); ok {
		req.WorkflowType = v
	}

	workflow, err := s.workflows.Generate(ctx, req, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(workflow.Response())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int64(100)
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if v, ok := args["limit"].(float64); ok && v > 0 {
			limit = int64(v)
		}
	}

	workflows, err := s.workflows.List(ctx, nil, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	responses := make([]models.WorkflowResponse, 0, len(workflows))
	for _, w := range workflows {
		responses = append(responses, w.Response())
	}

	jsonBytes, _ := json.Marshal(responses)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
