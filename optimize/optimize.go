// Package optimize implements the graph optimization stage of the
// lexer-generator pipeline (§4.4): the greedy-dot guard, rope collapsing
// and the tail-sharing/unreachable-state pruning that falls out of it,
// and the per-state dispatch-mode decision codegen consumes.
package optimize

import "github.com/lexgraph/lexgraph/graph"

// Plan is optimize's output: the rewritten graph plus the dispatch mode
// codegen should use for each of its Fork states. Kept separate from
// graph.Graph itself rather than bolted onto State, since dispatch mode
// is purely a codegen-facing decision with no bearing on match semantics.
type Plan struct {
	Graph    *graph.Graph
	Dispatch map[graph.ID]DispatchMode
}

// Optimize runs the full optimization pipeline over g: first the
// greedy-dot guard (checked directly against each leaf's MIR, since by
// this point the merged graph has already discarded which Fork states
// came from which pattern — the guard is purely a per-leaf structural
// check with no dependency on the merge result), then rope
// collapsing/pruning, early-leaf marking, and dispatch-mode selection.
func Optimize(g *graph.Graph, greedyDotInputs []GreedyDotInput) (*Plan, error) {
	if err := checkGreedyDot(greedyDotInputs); err != nil {
		return nil, err
	}

	optimized := collapseAndPrune(g)
	markEarly(optimized)
	dispatch := computeDispatch(optimized)

	return &Plan{Graph: optimized, Dispatch: dispatch}, nil
}
