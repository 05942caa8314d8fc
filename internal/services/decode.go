package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"prdflow/internal/normalizer"
)

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
)

// stripFences removes the markdown code fences models habitually wrap JSON
// answers in, fenced-with-language and bare variants both.
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.ReplaceAll(cleaned, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.ReplaceAll(cleaned, "```", "")
	}
	return strings.TrimSpace(cleaned)
}

// decodeAnalysis interprets a model reply as a structured analysis object.
// Replies that are not JSON, even after mining the text for an embedded
// object, degrade to {"raw_analysis": <reply>} instead of failing; analysis
// output is advisory and a prose answer still has value to the caller.
func decodeAnalysis(text string) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err == nil {
		return parsed
	}

	if m := jsonObjectRe.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), &parsed); err == nil {
			return parsed
		}
	}

	return map[string]any{"raw_analysis": text}
}

// decodeWorkflowNodes interprets a model reply as a JSON array of candidate
// workflow nodes. Wrapper objects ({"workflow": [...]} or {"nodes": [...]})
// are unwrapped, and as a last resort the raw reply is mined for its
// outermost array. ErrUnparseableWorkflow means no candidate array could be
// recovered at all; entries inside a recovered array are kept untyped so the
// normalizer owns every per-node judgement.
func decodeWorkflowNodes(text string) ([]normalizer.RawNode, error) {
	cleaned := []byte(stripFences(text))

	if nodes, ok := decodeNodeArray(cleaned); ok {
		return nodes, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &wrapper); err == nil {
		for _, key := range []string{"workflow", "nodes"} {
			if nodes, ok := decodeNodeArray(wrapper[key]); ok {
				return nodes, nil
			}
		}
	}

	if m := jsonArrayRe.FindString(text); m != "" {
		if nodes, ok := decodeNodeArray([]byte(m)); ok {
			return nodes, nil
		}
	}

	return nil, ErrUnparseableWorkflow
}

// decodeNodeArray parses a JSON array, keeping only the object entries.
// Non-object entries are dropped here; every other repair happens in the
// normalizer where it can be surfaced as a warning.
func decodeNodeArray(data []byte) ([]normalizer.RawNode, bool) {
	var entries []any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	nodes := make([]normalizer.RawNode, 0, len(entries))
	for _, entry := range entries {
		if rec, ok := entry.(map[string]any); ok {
			nodes = append(nodes, rec)
		}
	}
	return nodes, true
}
