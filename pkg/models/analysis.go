package models

import (
	"strings"
	"time"
)

// AnalysisType represents the flavor of document analysis to run
type AnalysisType string

const (
	AnalysisTypeGapAnalysis            AnalysisType = "gap_analysis"
	AnalysisTypeRequirementsExtraction AnalysisType = "requirements_extraction"
	AnalysisTypeSummary                AnalysisType = "summary"
)

// AnalysisTypes lists the supported analysis flavors in a stable order.
func AnalysisTypes() []AnalysisType {
	return []AnalysisType{
		AnalysisTypeGapAnalysis,
		AnalysisTypeRequirementsExtraction,
		AnalysisTypeSummary,
	}
}

// ParseAnalysisType matches s against the supported analysis flavors.
// Unknown values fall back to gap_analysis, mirroring prompt selection.
func ParseAnalysisType(s string) AnalysisType {
	switch AnalysisType(strings.ToLower(strings.TrimSpace(s))) {
	case AnalysisTypeRequirementsExtraction:
		return AnalysisTypeRequirementsExtraction
	case AnalysisTypeSummary:
		return AnalysisTypeSummary
	default:
		return AnalysisTypeGapAnalysis
	}
}

// DocumentAnalysis is a persisted analysis of one document. Result holds
// whatever structured JSON the model produced for the requested analysis
// type; when the model answers in prose the raw text is kept under the
// "raw_analysis" key.
type DocumentAnalysis struct {
	ID              string         `json:"id" bson:"_id"`
	DocumentName    string         `json:"document_name,omitempty" bson:"document_name,omitempty"`
	DocumentContent string         `json:"document_content" bson:"document_content"`
	DocumentLength  int            `json:"document_length" bson:"document_length"`
	AnalysisType    AnalysisType   `json:"analysis_type" bson:"analysis_type"`
	Result          map[string]any `json:"analysis_result" bson:"analysis_result"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UserID          *string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
}

// AnalysisRequest is the payload for analyzing pasted document text.
type AnalysisRequest struct {
	DocumentContent string `json:"document_content" validate:"required"`
	AnalysisType    string `json:"analysis_type"`
	DocumentName    string `json:"document_name"`
}

// AnalysisResponse is the analyze endpoints' reply. It mirrors
// DocumentAnalysis without echoing the submitted document text back.
type AnalysisResponse struct {
	ID             string         `json:"id"`
	DocumentName   string         `json:"document_name,omitempty"`
	DocumentLength int            `json:"document_length"`
	AnalysisType   AnalysisType   `json:"analysis_type"`
	Result         map[string]any `json:"analysis_result"`
	CreatedAt      time.Time      `json:"created_at"`
	UserID         *string        `json:"user_id,omitempty"`
}

// Response converts a stored analysis into its API reply shape.
func (a *DocumentAnalysis) Response() AnalysisResponse {
	return AnalysisResponse{
		ID:             a.ID,
		DocumentName:   a.DocumentName,
		DocumentLength: a.DocumentLength,
		AnalysisType:   a.AnalysisType,
		Result:         a.Result,
		CreatedAt:      a.CreatedAt,
		UserID:         a.UserID,
	}
}
