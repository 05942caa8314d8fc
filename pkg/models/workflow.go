// Package models defines the domain models for the PRD Flow service
package models

import (
	"strings"
	"time"
)

// NodeType represents the kind of step a workflow node models
type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeProcess  NodeType = "process"
	NodeTypeDecision NodeType = "decision"
	NodeTypeEnd      NodeType = "end"
)

// ParseNodeType matches s against the closed node type enumeration,
// case-insensitively, returning the canonical lowercase form.
func ParseNodeType(s string) (NodeType, bool) {
	switch NodeType(strings.ToLower(strings.TrimSpace(s))) {
	case NodeTypeStart:
		return NodeTypeStart, true
	case NodeTypeProcess:
		return NodeTypeProcess, true
	case NodeTypeDecision:
		return NodeTypeDecision, true
	case NodeTypeEnd:
		return NodeTypeEnd, true
	}
	return "", false
}

// WorkflowType represents the diagram flavor a workflow was generated as
type WorkflowType string

const (
	WorkflowTypeUserJourney      WorkflowType = "user_journey"
	WorkflowTypeServiceBlueprint WorkflowType = "service_blueprint"
	WorkflowTypeFeatureFlow      WorkflowType = "feature_flow"
)

// WorkflowTypes lists the supported workflow flavors in a stable order.
func WorkflowTypes() []WorkflowType {
	return []WorkflowType{
		WorkflowTypeUserJourney,
		WorkflowTypeServiceBlueprint,
		WorkflowTypeFeatureFlow,
	}
}

// ParseWorkflowType matches s against the supported workflow flavors.
// Unknown values fall back to user_journey, mirroring prompt selection.
func ParseWorkflowType(s string) WorkflowType {
	switch WorkflowType(strings.ToLower(strings.TrimSpace(s))) {
	case WorkflowTypeServiceBlueprint:
		return WorkflowTypeServiceBlueprint
	case WorkflowTypeFeatureFlow:
		return WorkflowTypeFeatureFlow
	default:
		return WorkflowTypeUserJourney
	}
}

// WorkflowNode is a single renderable step in a workflow diagram.
// Connections hold the ids of the nodes this node flows to, in order.
type WorkflowNode struct {
	ID          string   `json:"id" bson:"id"`
	Type        NodeType `json:"type" bson:"type"`
	Label       string   `json:"label" bson:"label"`
	X           float64  `json:"x" bson:"x"`
	Y           float64  `json:"y" bson:"y"`
	Connections []string `json:"connections" bson:"connections"`
}

// Workflow is a generated, immutable workflow diagram. UserID is nil for
// workflows generated by anonymous callers.
type Workflow struct {
	ID              string         `json:"id" bson:"_id"`
	Type            WorkflowType   `json:"type" bson:"type"`
	Nodes           []WorkflowNode `json:"nodes" bson:"nodes"`
	DocumentContent string         `json:"document_content" bson:"document_content"`
	DocumentLength  int            `json:"document_length" bson:"document_length"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UserID          *string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
}

// WorkflowRequest is the payload for workflow generation.
type WorkflowRequest struct {
	DocumentContent string `json:"document_content" validate:"required"`
	WorkflowType    string `json:"workflow_type"`
}

// WorkflowResponse is the generate endpoint's reply. It mirrors Workflow
// without echoing the submitted document text back.
type WorkflowResponse struct {
	ID             string         `json:"id"`
	Type           WorkflowType   `json:"type"`
	Nodes          []WorkflowNode `json:"nodes"`
	DocumentLength int            `json:"document_length"`
	CreatedAt      time.Time      `json:"created_at"`
	UserID         *string        `json:"user_id,omitempty"`
}

// Response converts a stored workflow into its API reply shape.
func (w *Workflow) Response() WorkflowResponse {
	return WorkflowResponse{
		ID:             w.ID,
		Type:           w.Type,
		Nodes:          w.Nodes,
		DocumentLength: w.DocumentLength,
		CreatedAt:      w.CreatedAt,
		UserID:         w.UserID,
	}
}
