package leaf

import (
	"errors"
	"fmt"
)

// ErrDuplicateExplicitPriority indicates two or more leaves were given the
// same explicit priority override (§7's "duplicate explicit priority at
// the same leaf"): an override only disambiguates a tie when it is
// distinct, so two leaves claiming the same override value leaves the
// original ambiguity unresolved.
var ErrDuplicateExplicitPriority = errors.New("duplicate explicit priority")

// BuildError reports a leaf-construction failure, naming every leaf
// involved so the diagnostic can point at each offending pattern.
type BuildError struct {
	Priority int
	LeafIDs  []ID
	Err      error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%v: priority %d shared by leaves %v", e.Err, e.Priority, e.LeafIDs)
}

// Unwrap returns the underlying sentinel error.
func (e *BuildError) Unwrap() error {
	return e.Err
}
