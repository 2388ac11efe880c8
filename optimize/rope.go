package optimize

import "github.com/lexgraph/lexgraph/graph"

// rebuilder rewrites a graph in a single reachable-only traversal from
// Root, collapsing single-byte Fork chains into Rope states as it goes.
// Because the traversal only ever allocates a new state for an id it
// actually reaches, tail sharing and unreachable-state pruning (§4.4's
// first two bullets) fall out of the same pass rather than needing a
// second one: a state that became unreachable — whether because
// priority resolution during merge never accepted it, or because this
// pass just folded it into a Rope's byte run — is simply never visited,
// so it never gets a new id.
//
// Cyclic graphs (a repetition loops a Fork back to an earlier state) are
// handled the same two-phase way §9 describes for the merge itself:
// reserve a stable new id for an old id before recursing into it, so a
// back-edge discovered mid-recursion resolves to the placeholder instead
// of recursing forever.
type rebuilder struct {
	old      *graph.Graph
	indegree map[graph.ID]int
	memo     map[graph.ID]graph.ID
	states   []*graph.State
}

// collapseAndPrune runs the rebuild described above and returns the new
// graph, rooted at the remapped root id.
func collapseAndPrune(g *graph.Graph) *graph.Graph {
	r := &rebuilder{
		old:      g,
		indegree: computeIndegree(g),
		memo:     make(map[graph.ID]graph.ID),
	}
	root := r.remap(g.Root)
	return graph.NewGraph(root, r.states)
}

// computeIndegree counts, for every state, how many transitions anywhere
// in the graph target it. A state with indegree exactly 1 is safe to fold
// into the interior of a Rope's byte run: nothing else in the graph reaches
// it directly, so nothing is lost by never giving it its own identity in
// the rebuilt graph. Root is seeded at 1 so an internal back-edge to Root
// can never make it look uniquely-referenced and get folded away — Root
// must always keep its own identity regardless of what points to it.
func computeIndegree(g *graph.Graph) map[graph.ID]int {
	indeg := map[graph.ID]int{g.Root: 1}
	for _, s := range g.States() {
		if s == nil || s.Kind() != graph.KindFork {
			continue
		}
		for _, t := range s.Transitions() {
			indeg[t.Next]++
		}
	}
	return indeg
}

// singleByteStep reports whether s is a candidate chain link: a Fork with
// no accept of its own and exactly one transition covering exactly one
// byte.
func singleByteStep(s *graph.State) (next graph.ID, b byte, ok bool) {
	if s.Kind() != graph.KindFork {
		return 0, 0, false
	}
	if _, has := s.Accept(); has {
		return 0, 0, false
	}
	trs := s.Transitions()
	if len(trs) != 1 || trs[0].Lo != trs[0].Hi {
		return 0, 0, false
	}
	return trs[0].Next, trs[0].Lo, true
}

// remap returns the new id standing in for old, building and memoizing it
// on first visit.
func (r *rebuilder) remap(old graph.ID) graph.ID {
	if id, ok := r.memo[old]; ok {
		return id
	}
	newID := graph.ID(len(r.states))
	r.memo[old] = newID
	r.states = append(r.states, nil) // placeholder, filled in below

	s := r.old.State(old)
	switch s.Kind() {
	case graph.KindLeaf:
		r.states[newID] = graph.NewLeaf(newID, s.LeafAccept())

	case graph.KindFork:
		if next, b, ok := singleByteStep(s); ok {
			if rope, built := r.tryBuildRope(newID, old, next, b); built {
				r.states[newID] = rope
				break
			}
		}
		r.states[newID] = r.rebuildFork(newID, s)

	default:
		// graph.Build never emits KindRope; nothing upstream of optimize
		// does either.
		panic("optimize: unexpected state kind in source graph")
	}
	return newID
}

// tryBuildRope walks forward from old's single-byte successor chain,
// absorbing every interior link that has indegree 1 and is itself a
// single-byte chain candidate, stopping at the first state that either has
// another reference, accepts, branches, or covers more than one byte. That
// stopping state becomes the Rope's ropeNext and keeps its own identity.
// Returns ok=false (leaving the caller to build an ordinary Fork instead)
// when the resulting run is too short to be worth collapsing.
func (r *rebuilder) tryBuildRope(newID, start, firstNext graph.ID, firstByte byte) (*graph.State, bool) {
	bytes := []byte{firstByte}
	cur := firstNext
	walking := map[graph.ID]bool{start: true}

	for {
		if walking[cur] {
			break // defensive cycle guard; should be unreachable given indegree gating
		}
		curState := r.old.State(cur)
		next, b, ok := singleByteStep(curState)
		if !ok || r.indegree[cur] != 1 {
			break
		}
		walking[cur] = true
		bytes = append(bytes, b)
		cur = next
	}

	if len(bytes) < 2 {
		return nil, false
	}
	ropeNext := r.remap(cur)
	return graph.NewRope(newID, bytes, ropeNext), true
}

// rebuildFork remaps every transition target of an ordinary Fork, keeping
// its accept as-is.
func (r *rebuilder) rebuildFork(newID graph.ID, s *graph.State) *graph.State {
	old := s.Transitions()
	out := make([]graph.Transition, len(old))
	for i, t := range old {
		out[i] = graph.Transition{Lo: t.Lo, Hi: t.Hi, Next: r.remap(t.Next)}
	}
	var accept *graph.Accept
	if a, has := s.Accept(); has {
		accept = &a
	}
	return graph.NewFork(newID, out, accept)
}
