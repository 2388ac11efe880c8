package diag

import (
	"fmt"
	"strings"

	"github.com/lexgraph/lexgraph/graph"
)

// DumpDOT renders g as Graphviz DOT source, grounded on the nex lexer
// generator's own dumpDotGraph: the root state is boxed, accepting states
// are doublecircles, other states keep Graphviz's default node shape, and
// each transition is an edge labeled with its byte range.
func DumpDOT(g *graph.Graph) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph lexgraph {\n")
	fmt.Fprintf(&sb, "  rankdir=LR;\n")
	fmt.Fprintf(&sb, "  %d [shape=box];\n", g.Root)

	for _, s := range orderedStates(g) {
		if _, accepts := stateAccept(s); accepts && s.Kind() != graph.KindLeaf {
			fmt.Fprintf(&sb, "  %d [shape=doublecircle];\n", s.ID())
		} else if s.Kind() == graph.KindLeaf {
			fmt.Fprintf(&sb, "  %d [shape=doublecircle];\n", s.ID())
		}
	}

	for _, s := range orderedStates(g) {
		switch s.Kind() {
		case graph.KindRope:
			fmt.Fprintf(&sb, "  %d -> %d [label=%q];\n", s.ID(), s.RopeNext(), ropeLabel(s.Bytes()))
		case graph.KindFork:
			for _, t := range s.Transitions() {
				fmt.Fprintf(&sb, "  %d -> %d [label=%q];\n", s.ID(), t.Next, byteRangeLabel(t.Lo, t.Hi))
			}
		}
	}

	fmt.Fprintln(&sb, "}")
	return []byte(sb.String())
}
