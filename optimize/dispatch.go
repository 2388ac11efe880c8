package optimize

import "github.com/lexgraph/lexgraph/graph"

// DispatchMode is codegen's choice of generated code shape for a Fork
// state's transitions (§4.4's "range coalescing" bullet): either a linear
// chain of range comparisons, or a single Go switch statement on the
// input byte with one case list per transition; no lookup table is
// generated in either mode. Adjacent-range coalescing onto the same target
// already happened once, earlier, inside graph.Build's own subset
// construction (coalesceTransitions) — every Transition slice this
// package ever sees is already maximally coalesced — so what's left for
// optimize to decide is purely the density trade-off between the two
// generated-code shapes.
type DispatchMode uint8

const (
	// DispatchChain generates a linear if/else-if chain of range checks.
	DispatchChain DispatchMode = iota
	// DispatchTable generates a switch statement on the byte, one case
	// list per transition.
	DispatchTable
)

// Density heuristic from §4.4: the switch form is chosen once the covered
// byte count or the number of distinct ranges reaches these thresholds.
const (
	tableCoveredBytesThreshold = 64
	tableRangeCountThreshold   = 4
)

// computeDispatch decides a DispatchMode for every Fork state in g.
func computeDispatch(g *graph.Graph) map[graph.ID]DispatchMode {
	modes := make(map[graph.ID]DispatchMode)
	for _, s := range g.States() {
		if s == nil || s.Kind() != graph.KindFork {
			continue
		}
		modes[s.ID()] = chooseDispatch(s.Transitions())
	}
	return modes
}

func chooseDispatch(trs []graph.Transition) DispatchMode {
	if len(trs) >= tableRangeCountThreshold {
		return DispatchTable
	}
	covered := 0
	for _, t := range trs {
		covered += int(t.Hi) - int(t.Lo) + 1
	}
	if covered >= tableCoveredBytesThreshold {
		return DispatchTable
	}
	return DispatchChain
}
