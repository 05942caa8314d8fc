package normalizer

import (
	"strings"

	"prdflow/pkg/models"
)

// resolveConnections cleans every candidate's raw connections value into an
// ordered list of valid forward target ids, accumulating a warning for each
// entry it drops or invents. Model output is noisy here by nature, so nothing
// in this stage is fatal.
//
// Accepted raw shapes: a single string, a list of strings, a list of
// {"target": ..., "label": ...} objects, or nothing at all. Matching is
// case-insensitive but the resolved edge keeps the target's declared casing.
func resolveConnections(cands []candidate) []Warning {
	index := make(map[string]int, len(cands))
	for i, c := range cands {
		index[strings.ToLower(c.node.ID)] = i
	}

	var warnings []Warning

	for i := range cands {
		src := &cands[i]
		resolved := make([]string, 0, 4)
		taken := make(map[int]bool)

		for _, ref := range rawTargets(src.connections) {
			target := strings.TrimSpace(ref)
			if target == "" {
				warnings = append(warnings, Warning{Kind: WarnMalformed, Node: src.node.ID})
				continue
			}
			j, ok := index[strings.ToLower(target)]
			switch {
			case !ok:
				warnings = append(warnings, Warning{Kind: WarnDangling, Node: src.node.ID, Target: target})
			case j == i:
				warnings = append(warnings, Warning{Kind: WarnSelf, Node: src.node.ID, Target: target})
			case j < i:
				// Backward references never satisfy forward-reachability;
				// the renderer needs a declaration-order flow.
				warnings = append(warnings, Warning{Kind: WarnBackward, Node: src.node.ID, Target: cands[j].node.ID})
			case taken[j]:
				warnings = append(warnings, Warning{Kind: WarnDuplicate, Node: src.node.ID, Target: cands[j].node.ID})
			default:
				taken[j] = true
				resolved = append(resolved, cands[j].node.ID)
			}
		}

		if len(resolved) == 0 && src.node.Type != models.NodeTypeEnd {
			if i+1 < len(cands) {
				next := cands[i+1].node.ID
				resolved = append(resolved, next)
				warnings = append(warnings, Warning{Kind: WarnSynthesized, Node: src.node.ID, Target: next})
			} else {
				warnings = append(warnings, Warning{Kind: WarnTerminal, Node: src.node.ID})
			}
		}

		src.node.Connections = resolved
	}

	return warnings
}

// rawTargets flattens whatever shape the connections field arrived in into
// candidate target strings. Unusable entries come back as "" so the caller
// can warn per entry.
func rawTargets(v any) []string {
	switch refs := v.(type) {
	case nil:
		return nil
	case string:
		return []string{refs}
	case []string:
		return refs
	case []any:
		out := make([]string, 0, len(refs))
		for _, ref := range refs {
			switch t := ref.(type) {
			case string:
				out = append(out, t)
			case map[string]any:
				out = append(out, stringValue(t["target"]))
			default:
				out = append(out, "")
			}
		}
		return out
	case map[string]any:
		return []string{stringValue(refs["target"])}
	default:
		return []string{""}
	}
}
