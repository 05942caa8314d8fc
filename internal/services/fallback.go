package services

import (
	"strings"

	"prdflow/pkg/models"
)

// FallbackWorkflow builds a canned workflow graph when the model's answer
// yields nothing renderable: unparseable output, or too few nodes to draw.
// The graph is picked by workflow flavor plus keyword sniffing on the
// document, so the result still loosely matches the subject matter. The
// returned nodes are authored valid and go straight to storage.
func FallbackWorkflow(content string, workflowType models.WorkflowType) []models.WorkflowNode {
	lower := strings.ToLower(content)

	switch workflowType {
	case models.WorkflowTypeUserJourney:
		switch {
		case containsAny(lower, "e-commerce", "shopping", "cart"):
			return ecommerceJourney()
		case containsAny(lower, "social", "post", "media"):
			return socialJourney()
		default:
			return genericJourney()
		}
	case models.WorkflowTypeServiceBlueprint:
		if containsAny(lower, "support", "ticket", "customer") {
			return supportBlueprint()
		}
		return genericBlueprint()
	case models.WorkflowTypeFeatureFlow:
		if containsAny(lower, "api", "integration") {
			return apiFeatureFlow()
		}
		return genericFeatureFlow()
	}

	return defaultGraph()
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func node(id string, typ models.NodeType, label string, x, y float64, connections ...string) models.WorkflowNode {
	if connections == nil {
		connections = []string{}
	}
	return models.WorkflowNode{
		ID:          id,
		Type:        typ,
		Label:       label,
		X:           x,
		Y:           y,
		Connections: connections,
	}
}

func ecommerceJourney() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "User Opens App", 200, 100, "browse"),
		node("browse", models.NodeTypeProcess, "Browse Products", 500, 100, "select"),
		node("select", models.NodeTypeProcess, "Select Items", 800, 100, "cart"),
		node("cart", models.NodeTypeProcess, "Add to Cart", 1100, 100, "auth_check"),
		node("auth_check", models.NodeTypeDecision, "User Logged In?", 1400, 100, "payment", "login"),
		node("login", models.NodeTypeProcess, "Login/Register", 1400, 300, "payment"),
		node("payment", models.NodeTypeProcess, "Process Payment", 1700, 100, "success_check"),
		node("success_check", models.NodeTypeDecision, "Payment Success?", 2000, 100, "confirmation", "retry"),
		node("retry", models.NodeTypeProcess, "Retry Payment", 2000, 300, "payment"),
		node("confirmation", models.NodeTypeProcess, "Order Confirmation", 2300, 100, "end"),
		node("end", models.NodeTypeEnd, "Order Complete", 2600, 100),
	}
}

func socialJourney() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "User Login", 200, 100, "dashboard"),
		node("dashboard", models.NodeTypeProcess, "View Dashboard", 500, 100, "create"),
		node("create", models.NodeTypeProcess, "Create Post", 800, 100, "content_check"),
		node("content_check", models.NodeTypeDecision, "Content Valid?", 1100, 100, "schedule", "edit"),
		node("edit", models.NodeTypeProcess, "Edit Content", 1100, 300, "content_check"),
		node("schedule", models.NodeTypeDecision, "Schedule or Publish?", 1400, 100, "publish", "schedule_time"),
		node("schedule_time", models.NodeTypeProcess, "Set Schedule Time", 1400, 50, "publish"),
		node("publish", models.NodeTypeProcess, "Publish Content", 1700, 100, "end"),
		node("end", models.NodeTypeEnd, "Post Published", 2000, 100),
	}
}

func genericJourney() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "User Entry", 200, 100, "discover"),
		node("discover", models.NodeTypeProcess, "Discover Features", 500, 100, "valid_check"),
		node("valid_check", models.NodeTypeDecision, "Valid Input?", 800, 100, "interact", "error"),
		node("error", models.NodeTypeProcess, "Show Error Message", 800, 300, "discover"),
		node("interact", models.NodeTypeProcess, "User Interaction", 1100, 100, "complete"),
		node("complete", models.NodeTypeProcess, "Complete Task", 1400, 100, "end"),
		node("end", models.NodeTypeEnd, "Task Complete", 1700, 100),
	}
}

func supportBlueprint() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "Service Request", 200, 100, "validate"),
		node("validate", models.NodeTypeProcess, "Validate Request", 500, 100, "valid_check"),
		node("valid_check", models.NodeTypeDecision, "Request Valid?", 800, 100, "route", "reject"),
		node("reject", models.NodeTypeProcess, "Reject Request", 800, 300, "notify_rejection"),
		node("notify_rejection", models.NodeTypeEnd, "Rejection Sent", 1100, 300),
		node("route", models.NodeTypeProcess, "Route to Team", 1100, 100, "priority"),
		node("priority", models.NodeTypeDecision, "High Priority?", 1400, 100, "escalate", "resolve"),
		node("escalate", models.NodeTypeProcess, "Escalate to Manager", 1400, 50, "resolve"),
		node("resolve", models.NodeTypeProcess, "Resolve Issue", 1700, 100, "quality_check"),
		node("quality_check", models.NodeTypeDecision, "Quality Approved?", 2000, 100, "notify", "rework"),
		node("rework", models.NodeTypeProcess, "Rework Solution", 2000, 300, "resolve"),
		node("notify", models.NodeTypeProcess, "Notify Customer", 2300, 100, "end"),
		node("end", models.NodeTypeEnd, "Service Complete", 2600, 100),
	}
}

func genericBlueprint() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "Service Trigger", 200, 100, "validate"),
		node("validate", models.NodeTypeProcess, "Input Validation", 500, 100, "valid_check"),
		node("valid_check", models.NodeTypeDecision, "Input Valid?", 800, 100, "process", "error"),
		node("error", models.NodeTypeEnd, "Error Response", 800, 300),
		node("process", models.NodeTypeProcess, "Core Processing", 1100, 100, "quality"),
		node("quality", models.NodeTypeDecision, "Quality Check Pass?", 1400, 100, "deliver", "retry"),
		node("retry", models.NodeTypeProcess, "Retry Processing", 1400, 300, "process"),
		node("deliver", models.NodeTypeProcess, "Service Delivery", 1700, 100, "end"),
		node("end", models.NodeTypeEnd, "Service Complete", 2000, 100),
	}
}

func apiFeatureFlow() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "API Request", 200, 100, "auth"),
		node("auth", models.NodeTypeProcess, "Authentication", 500, 100, "auth_check"),
		node("auth_check", models.NodeTypeDecision, "Auth Valid?", 800, 100, "validate", "unauthorized"),
		node("unauthorized", models.NodeTypeEnd, "Unauthorized", 800, 300),
		node("validate", models.NodeTypeProcess, "Input Validation", 1100, 100, "valid_check"),
		node("valid_check", models.NodeTypeDecision, "Valid Input?", 1400, 100, "process", "bad_request"),
		node("bad_request", models.NodeTypeEnd, "Bad Request", 1400, 300),
		node("process", models.NodeTypeProcess, "Business Logic", 1700, 100, "integrate"),
		node("integrate", models.NodeTypeProcess, "External Integration", 2000, 100, "success_check"),
		node("success_check", models.NodeTypeDecision, "Integration Success?", 2300, 100, "response", "error_response"),
		node("error_response", models.NodeTypeEnd, "Error Response", 2300, 300),
		node("response", models.NodeTypeEnd, "Success Response", 2600, 100),
	}
}

func genericFeatureFlow() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "Feature Trigger", 200, 100, "input"),
		node("input", models.NodeTypeProcess, "Input Processing", 500, 100, "validation"),
		node("validation", models.NodeTypeDecision, "Input Valid?", 800, 100, "logic", "error"),
		node("error", models.NodeTypeEnd, "Validation Error", 800, 300),
		node("logic", models.NodeTypeProcess, "Core Logic", 1100, 100, "decide"),
		node("decide", models.NodeTypeDecision, "Business Rules Met?", 1400, 100, "output", "alternative"),
		node("alternative", models.NodeTypeProcess, "Alternative Path", 1400, 300, "output"),
		node("output", models.NodeTypeProcess, "Generate Output", 1700, 100, "end"),
		node("end", models.NodeTypeEnd, "Feature Complete", 2000, 100),
	}
}

func defaultGraph() []models.WorkflowNode {
	return []models.WorkflowNode{
		node("start", models.NodeTypeStart, "Start", 200, 100, "process1"),
		node("process1", models.NodeTypeProcess, "Initial Process", 500, 100, "decision1"),
		node("decision1", models.NodeTypeDecision, "Continue?", 800, 100, "process2", "end_early"),
		node("end_early", models.NodeTypeEnd, "Early Exit", 800, 300),
		node("process2", models.NodeTypeProcess, "Final Process", 1100, 100, "end"),
		node("end", models.NodeTypeEnd, "Complete", 1400, 100),
	}
}
