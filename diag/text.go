package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexgraph/lexgraph/graph"
)

// DumpText renders a human-readable listing of g: every leaf the graph can
// accept alongside its priority, followed by a state-by-state dump of the
// optimized graph itself — the same two-part "table, then states" shape
// the nex generator's own DFA dump uses.
func DumpText(g *graph.Graph) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "leaves (%d):\n", len(leafPriorities(g)))
	for _, lp := range leafPriorities(g) {
		fmt.Fprintf(&sb, "  leaf %d: priority %d\n", lp.id, lp.priority)
	}

	states := orderedStates(g)
	fmt.Fprintf(&sb, "\nstates (%d), root %d:\n", len(states), g.Root)
	for _, s := range states {
		dumpStateText(&sb, s)
	}

	return []byte(sb.String())
}

type leafPriority struct {
	id       uint32
	priority int
}

// leafPriorities collects the distinct leaves reachable in g, each with
// the priority recorded at its first accepting state, sorted by leaf id.
func leafPriorities(g *graph.Graph) []leafPriority {
	seen := make(map[uint32]int)
	var order []uint32
	for _, s := range orderedStates(g) {
		a, ok := stateAccept(s)
		if !ok {
			continue
		}
		id := uint32(a.LeafID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = a.Priority
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]leafPriority, len(order))
	for i, id := range order {
		out[i] = leafPriority{id: id, priority: seen[id]}
	}
	return out
}

func dumpStateText(sb *strings.Builder, s *graph.State) {
	switch s.Kind() {
	case graph.KindLeaf:
		a := s.LeafAccept()
		fmt.Fprintf(sb, "  [%d] Leaf: accepts leaf %d (priority %d)\n", s.ID(), a.LeafID, a.Priority)

	case graph.KindRope:
		fmt.Fprintf(sb, "  [%d] Rope %s -> %d\n", s.ID(), ropeLabel(s.Bytes()), s.RopeNext())

	case graph.KindFork:
		tag := "Fork"
		if s.Early() {
			tag = "Fork (early)"
		}
		if a, ok := s.Accept(); ok {
			fmt.Fprintf(sb, "  [%d] %s: accepts leaf %d (priority %d)\n", s.ID(), tag, a.LeafID, a.Priority)
		} else {
			fmt.Fprintf(sb, "  [%d] %s\n", s.ID(), tag)
		}
		for _, t := range s.Transitions() {
			fmt.Fprintf(sb, "      %s -> %d\n", byteRangeLabel(t.Lo, t.Hi), t.Next)
		}
	}
}
