package optimize

import (
	"errors"
	"fmt"

	"github.com/lexgraph/lexgraph/leaf"
)

// ErrGreedyDot indicates a pattern contains an unbounded greedy repetition
// over a character class equivalent to "any" (§4.4) without the leaf
// opting in via leaf.Flags.AllowGreedyDot. Left unchecked, such a pattern
// forces the runtime lexer into an O(n^2) re-scan whenever a later,
// higher-priority pattern fails deep into the greedy match.
var ErrGreedyDot = errors.New("unbounded greedy repetition over an any-equivalent class")

// GreedyDotError names the offending leaf so the diagnostic can point
// directly at its pattern.
type GreedyDotError struct {
	LeafID leaf.ID
	Span   leaf.Span
	Err    error
}

func (e *GreedyDotError) Error() string {
	return fmt.Sprintf("%v: pattern %q (%s)", e.Err, e.Span.Pattern, e.Span.PatternName)
}

func (e *GreedyDotError) Unwrap() error {
	return e.Err
}
