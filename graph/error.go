package graph

import (
	"errors"
	"fmt"

	"github.com/lexgraph/lexgraph/leaf"
)

// ErrAmbiguous indicates two leaves reach the same graph state with equal
// priority and neither pattern strictly extends the other (§4.3): the
// recognizer would have no principled way to choose between them at
// runtime, so this is a construction-time failure rather than a runtime
// decision.
var ErrAmbiguous = errors.New("ambiguous equal-priority collision")

// BuildError reports a graph-construction failure, naming every leaf and
// source span involved so the diagnostic can point at each colliding
// pattern, mirroring leaf.BuildError's shape.
type BuildError struct {
	Priority int
	Spans    []leaf.Span
	Err      error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%v: priority %d shared by %v", e.Err, e.Priority, e.Spans)
}

// Unwrap returns the underlying sentinel error.
func (e *BuildError) Unwrap() error {
	return e.Err
}
