package optimize

import (
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
)

// GreedyDotInput is one leaf's worth of input to the greedy-dot guard:
// its MIR (to search for the offending shape) and enough of its leaf
// record to report a useful diagnostic and honor its opt-out.
type GreedyDotInput struct {
	LeafID leaf.ID
	MIR    *mir.Node
	Span   leaf.Span
	Allow  bool
}

// checkGreedyDot fails the build on the first leaf (in input order) that
// contains an unbounded greedy repetition over an any-equivalent class
// without having opted in, grounded on the corpus's own
// isWildcardOrRepetition detection (literal/wildcard_detection.go) —
// generalized here from "does this sub-expression vary the match length at
// all" to the narrower "is it specifically an unbounded greedy repeat over
// dot", since only that shape causes the re-scan cost §4.4 warns about.
func checkGreedyDot(inputs []GreedyDotInput) error {
	for _, in := range inputs {
		if in.Allow {
			continue
		}
		if containsGreedyDot(in.MIR) {
			return &GreedyDotError{LeafID: in.LeafID, Span: in.Span, Err: ErrGreedyDot}
		}
	}
	return nil
}

// containsGreedyDot searches n's entire tree for a Repeat node that is
// unbounded, greedy, and whose body is the lowered form of a dot-equivalent
// class — the shape that forces a runtime lexer to re-scan from scratch
// whenever a longer, higher-priority match ultimately fails.
func containsGreedyDot(n *mir.Node) bool {
	if n.Kind() == mir.KindRepeat {
		body, _, max, greedy := n.Repeat()
		if max == mir.Unbounded && greedy && body.IsAnyClass() {
			return true
		}
	}
	for _, c := range n.Children() {
		if containsGreedyDot(c) {
			return true
		}
	}
	return false
}
