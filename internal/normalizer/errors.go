package normalizer

import "fmt"

// SchemaError reports a fatal violation in one candidate node. It names the
// node and the offending field so callers can tell bad input apart from
// transient upstream failures.
type SchemaError struct {
	Node   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("workflow schema: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("workflow schema: node %q: %s: %s", e.Node, e.Field, e.Reason)
}

// WarningKind classifies a recovered connection problem.
type WarningKind string

const (
	WarnMalformed   WarningKind = "malformed"   // entry was not a usable target reference
	WarnDangling    WarningKind = "dangling"    // target id does not exist in the workflow
	WarnSelf        WarningKind = "self"        // node referenced itself
	WarnBackward    WarningKind = "backward"    // target declared at or before the source
	WarnDuplicate   WarningKind = "duplicate"   // repeated target collapsed to one edge
	WarnSynthesized WarningKind = "synthesized" // edge invented to keep the node reachable
	WarnTerminal    WarningKind = "terminal"    // non-end node left without a forward target
)

// Warning records a connection that was dropped, collapsed, or synthesized
// during resolution. Warnings accumulate; they never fail a request.
type Warning struct {
	Kind   WarningKind
	Node   string
	Target string
}

func (w Warning) String() string {
	if w.Target == "" {
		return fmt.Sprintf("node %q: %s connection", w.Node, w.Kind)
	}
	return fmt.Sprintf("node %q: %s connection %q", w.Node, w.Kind, w.Target)
}
