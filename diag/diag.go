// Package diag renders an optimized recognition graph for human
// inspection (§4.6): a flat leaf/priority listing, a DOT graph, and a
// Mermaid graph. Each dumper is a pure (graph) -> []byte function with no
// gating of its own — it is the caller's job to decide whether to invoke
// any of them at all, the same "debug output is an explicit return value,
// never a side-effecting logger" discipline the rest of this module
// follows for anything that isn't a build-time error.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexgraph/lexgraph/graph"
)

// orderedStates returns every non-nil state in g, sorted by id, so every
// dumper produces deterministic output regardless of the order of g's
// state slice.
func orderedStates(g *graph.Graph) []*graph.State {
	states := make([]*graph.State, 0, g.Len())
	for _, s := range g.States() {
		if s != nil {
			states = append(states, s)
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID() < states[j].ID() })
	return states
}

// stateAccept returns the Accept a state reports on arrival, if any —
// a Fork's optional accept or a Leaf's unconditional one.
func stateAccept(s *graph.State) (graph.Accept, bool) {
	switch s.Kind() {
	case graph.KindLeaf:
		return s.LeafAccept(), true
	case graph.KindFork:
		return s.Accept()
	default:
		return graph.Accept{}, false
	}
}

// byteRangeLabel renders a transition's byte range the way a hex dump
// would: a single "0x61" for a one-byte range, "0x61-0x7a" otherwise.
func byteRangeLabel(lo, hi byte) string {
	if lo == hi {
		return fmt.Sprintf("0x%02x", lo)
	}
	return fmt.Sprintf("0x%02x-0x%02x", lo, hi)
}

// ropeLabel renders a Rope state's required byte run as a quoted Go
// string literal when it is printable ASCII, falling back to a hex dump
// otherwise.
func ropeLabel(bs []byte) string {
	printable := true
	for _, c := range bs {
		if c < 0x20 || c > 0x7e {
			printable = false
			break
		}
	}
	if printable {
		return fmt.Sprintf("%q", string(bs))
	}
	var sb strings.Builder
	for i, c := range bs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "0x%02x", c)
	}
	return sb.String()
}
