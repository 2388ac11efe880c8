package codegen

import (
	"errors"
	"fmt"
)

// ErrEmptyGraph indicates Generate was asked to emit code for a graph with
// no leaves at all — nothing for the generated recognizer to ever return,
// which is always a caller mistake rather than a legitimate empty lexer.
var ErrEmptyGraph = errors.New("codegen: graph has no reachable leaves")

// GenError wraps a code-generation failure, grounded on the same
// sentinel-plus-struct shape as graph.BuildError and mir.LowerError.
type GenError struct {
	Backend Backend
	Err     error
}

func (e *GenError) Error() string {
	return fmt.Sprintf("codegen (%s backend): %v", e.Backend, e.Err)
}

func (e *GenError) Unwrap() error {
	return e.Err
}
