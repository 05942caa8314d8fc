package services

import "prdflow/pkg/models"

// analysisPrompts are the system prompts for each document analysis flavor.
// Each instructs the model to answer with a specific JSON object shape.
var analysisPrompts = map[models.AnalysisType]string{
	models.AnalysisTypeGapAnalysis: `You are an expert business analyst and product manager. Analyze the provided PRD/BRD document and identify:

1. BUSINESS GAPS: Areas where business goals are not clearly addressed by product requirements
2. DESIGN AMBIGUITIES: Vague or unclear design specifications that need clarification
3. MISSING REQUIREMENTS: Important functional or non-functional requirements that are missing
4. EDGE CASES: Potential scenarios, boundary conditions, or exceptional cases not covered
5. RECOMMENDATIONS: Specific actionable suggestions to improve the document

Please provide a structured analysis in JSON format with the following structure:
{
  "business_gaps": ["List of specific business gaps"],
  "design_ambiguities": ["List of design ambiguities"],
  "missing_requirements": ["List of missing requirements"],
  "edge_cases": ["List of edge cases"],
  "recommendations": ["List of specific recommendations"],
  "overall_assessment": "Overall assessment of the document quality and completeness"
}

Make sure your response is valid JSON and provides specific, actionable insights.`,

	models.AnalysisTypeRequirementsExtraction: `You are an expert business analyst. Extract and categorize all requirements from the provided PRD/BRD document.

Please provide a structured extraction in JSON format:
{
  "functional_requirements": ["List of functional requirements"],
  "non_functional_requirements": ["List of non-functional requirements"],
  "business_requirements": ["List of business requirements"],
  "user_stories": ["List of user stories"],
  "acceptance_criteria": ["List of acceptance criteria"],
  "constraints": ["List of constraints"],
  "assumptions": ["List of assumptions"]
}`,

	models.AnalysisTypeSummary: `You are an expert document summarizer. Provide a comprehensive summary of the PRD/BRD document.

Please provide a structured summary in JSON format:
{
  "executive_summary": "Brief executive summary",
  "key_features": ["List of key features"],
  "target_audience": "Target audience description",
  "business_goals": ["List of business goals"],
  "success_metrics": ["List of success metrics"],
  "timeline": "Project timeline information",
  "stakeholders": ["List of stakeholders"],
  "risks": ["List of identified risks"]
}`,
}

// workflowPrompts are the system prompts for each workflow flavor. Each
// instructs the model to answer with a JSON array of workflow nodes whose
// connections carry target ids and edge labels.
var workflowPrompts = map[models.WorkflowType]string{
	models.WorkflowTypeUserJourney: `You are an expert product analyst. Carefully read the provided PRD/BRD document and extract the EXACT user journey described in the document.

Look for:
- Specific user stories mentioned in the document
- Exact user flows described
- Decision points where users make choices
- Specific features and how users interact with them
- Particular user roles mentioned
- Detailed step-by-step processes described

Create a user journey workflow that follows the EXACT steps described in the document, including proper decision points.

Generate a JSON array of workflow nodes with this structure:
[
  {
    "id": "unique_id",
    "type": "start|process|decision|end",
    "label": "Exact step from the document",
    "x": x_position,
    "y": y_position,
    "connections": [{"target": "next_node_id", "label": "Yes|No|Continue|etc"}]
  }
]

IMPORTANT RULES:
- Use "start" for entry points (rectangular)
- Use "process" for actions/steps (rectangular)
- Use "decision" for choices/branches (diamond shape) with Yes/No or specific options
- Use "end" for completion points (oval)
- Use the EXACT terminology from the document
- Follow the SPECIFIC user flows mentioned
- Include the ACTUAL features described
- Create proper decision branches with labels like "Yes", "No", "Success", "Failure"
- Position nodes: start at x:200, then increment by 300 (500, 800, 1100, etc)
- Use y:100 for main flow, y:300 for "No" branches, y:50 for "Yes" branches
- Each connection should have a "target" and "label"

Extract the real workflow from this specific document with proper decision branching.`,

	models.WorkflowTypeServiceBlueprint: `You are an expert business process analyst. Carefully analyze the provided PRD/BRD document and extract the EXACT service delivery process described.

Look for:
- Backend processes mentioned in the document
- System interactions described
- Service delivery steps outlined
- Validation and approval steps
- Error handling processes
- Quality checks mentioned

Create a service blueprint that maps the SPECIFIC service processes described in the document with proper decision points.

Generate a JSON array of workflow nodes:
[
  {
    "id": "unique_id",
    "type": "start|process|decision|end",
    "label": "Specific service step from document",
    "x": x_position,
    "y": y_position,
    "connections": [{"target": "next_node_id", "label": "Approved|Rejected|Continue|etc"}]
  }
]

Include proper decision diamonds for validation, approval, and error handling steps.`,

	models.WorkflowTypeFeatureFlow: `You are an expert technical architect. Analyze the provided PRD/BRD document and extract the EXACT feature interactions and technical flow described.

Look for:
- Specific features mentioned and how they connect
- Technical integrations described
- Conditional logic and branching
- Feature dependencies outlined
- Error handling and validation steps

Create a feature flow that shows the SPECIFIC feature interactions described in the document with proper conditional branches.

Generate a JSON array of workflow nodes:
[
  {
    "id": "unique_id",
    "type": "start|process|decision|end",
    "label": "Actual feature/component from document",
    "x": x_position,
    "y": y_position,
    "connections": [{"target": "next_node_id", "label": "Success|Error|Valid|Invalid|etc"}]
  }
]

Include proper decision points for feature validation and conditional logic.`,
}

func buildPrompt(system, document string) string {
	return system + "\n\nDocument to analyze:\n\n" + document
}
