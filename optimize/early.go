package optimize

import (
	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/leaf"
)

// reachSet is the best (highest) priority reachable for each leaf id from
// a given state, transitively closed over every outgoing transition
// including the state's own accept.
type reachSet map[leaf.ID]int

// markEarly computes, for every accepting Fork, whether no further
// extension of the match can surface an equal-or-higher-priority leaf
// (§4.3), including a longer match of the same leaf, and calls
// graph.State.SetEarly accordingly.
//
// The graph can contain cycles (a repetition loops a Fork back on
// itself), so "what's reachable from here" can't be computed bottom-up in
// one topological pass; instead this iterates reach-sets to a fixed point
// (a small, build-time-only Kleene iteration — there is no live-traffic
// path anywhere near this code).
//
// Physical-EOF acceptance (§9's open question) never needs special-casing
// here: graph.Build already turns any state whose only transitions would
// be empty into a KindLeaf at construction time (buildState), so a state
// only ever reaches KindLeaf when there is truly nothing left to explore
// — codegen already stops there unconditionally. "Early" as computed here
// is strictly about Fork states that still have outgoing transitions but
// can provably stop following them early anyway.
func markEarly(g *graph.Graph) {
	reach := computeReach(g)

	for _, s := range g.States() {
		if s == nil || s.Kind() != graph.KindFork {
			continue
		}
		a, has := s.Accept()
		if !has {
			continue
		}
		s.SetEarly(isEarly(s, a, reach))
	}
}

// computeReach iterates reach[id] := accept(id) ∪ (∪ reach[target] for
// each outgoing transition/rope-next) until no reach set grows, which
// must terminate since every reach set is bounded by the total number of
// leaves and can only grow, never shrink.
func computeReach(g *graph.Graph) map[graph.ID]reachSet {
	reach := make(map[graph.ID]reachSet, g.Len())
	for _, s := range g.States() {
		if s == nil {
			continue
		}
		reach[s.ID()] = ownAccept(s)
	}

	for changed := true; changed; {
		changed = false
		for _, s := range g.States() {
			if s == nil {
				continue
			}
			for _, target := range successors(s) {
				if mergeInto(reach[s.ID()], reach[target]) {
					changed = true
				}
			}
		}
	}
	return reach
}

// ownAccept returns the single-entry reach set for a state's own accept,
// or an empty set if it doesn't accept.
func ownAccept(s *graph.State) reachSet {
	switch s.Kind() {
	case graph.KindFork:
		if a, has := s.Accept(); has {
			return reachSet{a.LeafID: a.Priority}
		}
	case graph.KindLeaf:
		a := s.LeafAccept()
		return reachSet{a.LeafID: a.Priority}
	}
	return reachSet{}
}

// successors returns the states directly reachable by consuming input
// from s: a Fork's transition targets, or a Rope's single ropeNext.
func successors(s *graph.State) []graph.ID {
	switch s.Kind() {
	case graph.KindFork:
		trs := s.Transitions()
		out := make([]graph.ID, len(trs))
		for i, t := range trs {
			out[i] = t.Next
		}
		return out
	case graph.KindRope:
		return []graph.ID{s.RopeNext()}
	default:
		return nil
	}
}

// mergeInto folds every (leafID, priority) pair in src into dst that
// either isn't present yet or improves on dst's current priority for that
// leaf, reporting whether dst changed.
func mergeInto(dst, src reachSet) bool {
	changed := false
	for id, pri := range src {
		if cur, ok := dst[id]; !ok || pri > cur {
			dst[id] = pri
			changed = true
		}
	}
	return changed
}

// isEarly reports whether no leaf reachable through any of s's outgoing
// transitions — including a longer match of a.LeafID itself — has
// priority >= a.Priority, i.e. no further extension of the match can
// beat or even tie the one already accepted here.
func isEarly(s *graph.State, a graph.Accept, reach map[graph.ID]reachSet) bool {
	for _, target := range successors(s) {
		for _, pri := range reach[target] {
			if pri >= a.Priority {
				return false
			}
		}
	}
	return true
}
