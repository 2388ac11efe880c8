// Package graph implements the graph construction and merging stage of
// the lexer-generator pipeline (§4.3): each leaf's MIR is compiled into a
// Thompson-style fragment automaton, all fragments are merged over a
// shared start state by eager subset construction, and conflicting
// terminals are resolved by priority.
package graph

import (
	"encoding/binary"
	"sort"

	"github.com/lexgraph/lexgraph/internal/sparse"
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
)

// Input is one leaf's compiled pattern, ready to be merged into the
// recognition graph.
type Input struct {
	Leaf leaf.Leaf
	MIR  *mir.Node
}

// Build merges every input's MIR into a single priority-resolved
// recognition graph (§4.3). Returns *BuildError wrapping ErrAmbiguous if
// two leaves reach the same state with equal priority and neither
// strictly extends the other.
func Build(inputs []Input) (*Graph, error) {
	fb := &fragBuilder{}
	spans := make(map[leaf.ID]leaf.Span, len(inputs))

	trie := &trieNode{}
	haveLiteral := false
	var rootStarts []fragStateID

	for _, in := range inputs {
		spans[in.Leaf.ID] = in.Leaf.Span
		if bytes, ok := literalBytes(in.MIR); ok {
			trie.insertLiteral(bytes, in.Leaf.ID, in.Leaf.Priority)
			haveLiteral = true
			continue
		}
		start, end := compileNode(fb, in.MIR)
		m := fb.addMatch(in.Leaf.ID, in.Leaf.Priority)
		fb.patch(end, m)
		rootStarts = append(rootStarts, start)
	}
	if haveLiteral {
		rootStarts = append(rootStarts, compileTrieNode(fb, trie))
	}

	m := &merger{frag: fb.states, cache: make(map[string]ID), spans: spans}
	if len(rootStarts) == 0 {
		// No leaves at all: the graph is a single dead Fork.
		root := m.allocState()
		m.states[root] = NewFork(root, nil, nil)
		return &Graph{Root: root, states: m.states}, nil
	}

	rootSet := epsilonClosure(m.frag, rootStarts)
	rootID, err := m.run(rootSet)
	if err != nil {
		return nil, err
	}
	return &Graph{Root: rootID, states: m.states}, nil
}

// merger runs eager subset construction over a fragment automaton,
// interning every discovered state-set by content hash (stateKey),
// adapted from dfa/lazy.Cache / ComputeStateKeyWithWord — simplified to
// drop the concurrency and eviction machinery a lazy, on-demand DFA needs,
// since this merge is a single-threaded pass that must exhaust its
// worklist before codegen can run at all.
type merger struct {
	frag    []fragState
	cache   map[string]ID
	pending [][]fragStateID
	states  []*State
	spans   map[leaf.ID]leaf.Span
}

// allocState reserves the next state id without yet assigning a *State,
// used for the degenerate zero-leaf graph.
func (m *merger) allocState() ID {
	id := ID(len(m.states))
	m.states = append(m.states, nil)
	return id
}

// getOrCreate interns set (already sorted, as returned by epsilonClosure)
// and returns its id, enqueuing it for processing if newly seen.
func (m *merger) getOrCreate(set []fragStateID) ID {
	key := stateKey(set)
	if id, ok := m.cache[key]; ok {
		return id
	}
	id := ID(len(m.states))
	m.cache[key] = id
	m.states = append(m.states, nil)
	m.pending = append(m.pending, set)
	return id
}

// run processes the worklist to a fixed point: every state-set reachable
// from root is built before run returns, since the whole graph must exist
// before codegen and optimize can operate on it (§4.3).
func (m *merger) run(rootSet []fragStateID) (ID, error) {
	rootID := m.getOrCreate(rootSet)
	for i := 0; i < len(m.pending); i++ {
		st, err := m.buildState(ID(i), m.pending[i])
		if err != nil {
			return InvalidID, err
		}
		m.states[i] = st
	}
	return rootID, nil
}

// buildState computes the Fork or Leaf state for one interned state-set:
// its accepting leaf (if any, with priority resolution) and its outgoing
// transitions, partitioned into disjoint byte ranges.
func (m *merger) buildState(id ID, set []fragStateID) (*State, error) {
	accept, err := m.resolveAccept(set)
	if err != nil {
		return nil, err
	}

	transitions := m.buildTransitions(set)
	if len(transitions) == 0 {
		if accept == nil {
			return NewFork(id, nil, nil), nil
		}
		return NewLeaf(id, *accept), nil
	}
	return NewFork(id, transitions, accept), nil
}

// resolveAccept finds the highest-priority leaf accepting at this
// state-set. Two or more leaves sharing that top priority is an
// ambiguity: both terminate at the identical position with nothing to
// break the tie (§4.3, §4.2).
func (m *merger) resolveAccept(set []fragStateID) (*Accept, error) {
	var best *Accept
	var bestSpans []leaf.Span
	for _, fid := range set {
		s := &m.frag[fid]
		if s.kind != fragMatch {
			continue
		}
		switch {
		case best == nil || s.priority > best.Priority:
			best = &Accept{LeafID: s.leafID, Priority: s.priority}
			bestSpans = []leaf.Span{m.spans[s.leafID]}
		case s.priority == best.Priority && s.leafID != best.LeafID:
			bestSpans = append(bestSpans, m.spans[s.leafID])
		}
	}
	if best != nil && len(bestSpans) > 1 {
		return nil, &BuildError{Priority: best.Priority, Spans: bestSpans, Err: ErrAmbiguous}
	}
	return best, nil
}

// buildTransitions partitions the byte alphabet into the maximal
// intervals over which this state-set's reachable fragment states agree,
// computing each interval's target closure and merging adjacent
// intervals that land on the same target — the standard subset
// construction extension for range alphabets (as opposed to the
// teacher's dfa/lazy.Builder.move, which tests one byte at a time against
// a live input rather than partitioning the whole alphabet up front; this
// pass has no live input, only the static alphabet, so it partitions once
// per state instead).
func (m *merger) buildTransitions(set []fragStateID) []Transition {
	cutSet := map[int]bool{0: true, 256: true}
	for _, fid := range set {
		s := &m.frag[fid]
		if s.kind != fragByteRange {
			continue
		}
		cutSet[int(s.lo)] = true
		cutSet[int(s.hi)+1] = true
	}
	cuts := make([]int, 0, len(cutSet))
	for c := range cutSet {
		cuts = append(cuts, c)
	}
	sort.Ints(cuts)

	var out []Transition
	for i := 0; i+1 < len(cuts); i++ {
		lo, hiExclusive := cuts[i], cuts[i+1]
		rep := byte(lo)

		var targets []fragStateID
		for _, fid := range set {
			s := &m.frag[fid]
			if s.kind != fragByteRange {
				continue
			}
			if rep >= s.lo && rep <= s.hi {
				targets = append(targets, s.next)
			}
		}
		if len(targets) == 0 {
			continue
		}
		closure := epsilonClosure(m.frag, targets)
		if len(closure) == 0 {
			continue
		}
		nextID := m.getOrCreate(closure)
		out = append(out, Transition{Lo: byte(lo), Hi: byte(hiExclusive - 1), Next: nextID})
	}
	return coalesceTransitions(out)
}

// coalesceTransitions merges adjacent transitions that land on the same
// target into a single wider range.
func coalesceTransitions(ts []Transition) []Transition {
	if len(ts) == 0 {
		return ts
	}
	out := ts[:1]
	for _, t := range ts[1:] {
		last := &out[len(out)-1]
		if last.Next == t.Next && int(last.Hi)+1 == int(t.Lo) {
			last.Hi = t.Hi
			continue
		}
		out = append(out, t)
	}
	return out
}

// epsilonClosure computes the set of ByteRange and Match fragment states
// reachable from ids by following Split and Epsilon transitions, sorted
// for use as a canonical stateKey. Mirrors dfa/lazy.Builder.epsilonClosure's
// DFS-with-visited-set shape, generalized from NFA states (which also
// carry Capture/Look variants this automaton has no equivalent of) to the
// fragment automaton's four kinds. The visited set uses sparse.SparseSet
// rather than a map, the same O(1)-membership structure the teacher's own
// closure walks lean on, since the universe of fragment-state ids (len(frag))
// is known up front.
func epsilonClosure(frag []fragState, ids []fragStateID) []fragStateID {
	seen := sparse.NewSparseSet(uint32(len(frag)))
	var out []fragStateID
	stack := make([]fragStateID, 0, len(ids)*2)

	push := func(id fragStateID) {
		if id != fragInvalid && seen.Insert(uint32(id)) {
			stack = append(stack, id)
		}
	}
	for _, id := range ids {
		push(id)
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := &frag[cur]
		switch s.kind {
		case fragByteRange, fragMatch:
			out = append(out, cur)
		case fragEpsilon:
			push(s.next)
		case fragSplit:
			push(s.left)
			push(s.right)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// stateKey encodes a canonical (already-sorted) fragment state-set as a
// content hash suitable for map-keyed interning, adapted from
// dfa/lazy.ComputeStateKeyWithWord (dropping the word-context bit that
// key also carries, since this automaton has no word-boundary assertion
// to track).
func stateKey(set []fragStateID) string {
	buf := make([]byte, 4*len(set))
	for i, id := range set {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(id))
	}
	return string(buf)
}
