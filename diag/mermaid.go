package diag

import (
	"fmt"
	"strings"

	"github.com/lexgraph/lexgraph/graph"
)

// DumpMermaid renders g as a Mermaid state diagram — the same
// node/edge structure DumpDOT produces, in Mermaid's textual syntax
// (spec.md §4.6 asks for both DOT and Mermaid; the corpus only shows a
// DOT emitter, so Mermaid is added in the same plain-writer style rather
// than grounded on a dedicated example).
func DumpMermaid(g *graph.Graph) []byte {
	var sb strings.Builder

	fmt.Fprintln(&sb, "stateDiagram-v2")
	fmt.Fprintf(&sb, "  [*] --> s%d\n", g.Root)

	for _, s := range orderedStates(g) {
		if a, ok := stateAccept(s); ok {
			fmt.Fprintf(&sb, "  s%d --> [*] : leaf %d (priority %d)\n", s.ID(), a.LeafID, a.Priority)
		}
	}

	for _, s := range orderedStates(g) {
		switch s.Kind() {
		case graph.KindRope:
			fmt.Fprintf(&sb, "  s%d --> s%d : %s\n", s.ID(), s.RopeNext(), mermaidLabel(ropeLabel(s.Bytes())))
		case graph.KindFork:
			for _, t := range s.Transitions() {
				fmt.Fprintf(&sb, "  s%d --> s%d : %s\n", s.ID(), t.Next, mermaidLabel(byteRangeLabel(t.Lo, t.Hi)))
			}
		}
	}

	return []byte(sb.String())
}

// mermaidLabel replaces characters Mermaid's edge-label grammar treats as
// syntax (colons, quotes) with Mermaid entity codes (#58;, #34;) so a
// Rope's literal text can never break the diagram it's embedded in.
func mermaidLabel(s string) string {
	r := strings.NewReplacer(":", "#58;", "\"", "#34;")
	return r.Replace(s)
}
