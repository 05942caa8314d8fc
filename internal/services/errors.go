package services

import (
	"errors"
	"fmt"
)

// ErrUnparseableWorkflow reports AI workflow output that could not be
// decoded into node maps. Callers substitute a fallback workflow.
var ErrUnparseableWorkflow = errors.New("services: unparseable workflow output")

var errNoContent = errors.New("services: no content generated")

// UpstreamError reports a failure of the generative backend after retries
// were exhausted. Status carries the HTTP status the API relays to the
// caller: 503 overloaded or unreachable, 429 rate limited, 504 timeout.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("services: upstream %d: %s", e.Status, e.Message)
}
