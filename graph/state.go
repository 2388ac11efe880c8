package graph

import (
	"fmt"

	"github.com/lexgraph/lexgraph/leaf"
)

// ID uniquely identifies a state within a single Graph.
type ID uint32

// InvalidID marks the absence of a state (an explicit "error" miss action).
const InvalidID ID = 0xFFFFFFFF

// Kind identifies the type of graph state and determines which fields of
// State are valid, the same tagged-union discipline mir.Node and the
// teacher's nfa.State use for their own closed variant sets.
type Kind uint8

const (
	// KindFork is a state with a fanout keyed by disjoint byte ranges,
	// plus an optional accepting leaf (the default "miss" action).
	KindFork Kind = iota

	// KindRope is a non-empty run of required bytes followed by a single
	// next state (a Fork or a Leaf), an optimize-pass collapsing of a
	// single-byte transition chain.
	// graph.Build never produces one directly; optimize introduces them.
	KindRope

	// KindLeaf is a pure terminal state: an accepting leaf with no
	// further outgoing transitions at all.
	KindLeaf
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFork:
		return "Fork"
	case KindRope:
		return "Rope"
	case KindLeaf:
		return "Leaf"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Transition is one disjoint byte range and its target state.
// Transitions within a single Fork are sorted by Lo and never overlap
// (§3 invariant: "every non-Leaf state has a defined behavior for every
// byte in the alphabet" is met by the Fork's optional accept, taken as the
// miss action for any byte no transition covers, not by transitions
// covering the full range).
type Transition struct {
	Lo, Hi byte
	Next   ID
}

// Accept names the leaf a state accepts at, and at what priority — the
// priority is carried alongside the id so optimize and codegen never need
// to look a leaf back up just to compare priorities.
type Accept struct {
	LeafID   leaf.ID
	Priority int
}

// State is a single graph node. Kind determines which of the remaining
// fields are meaningful.
type State struct {
	id   ID
	kind Kind

	// Fork
	transitions []Transition
	accept      *Accept // nil if this Fork does not itself accept
	early       bool    // set by optimize; see optimize package

	// Rope
	bytes    []byte
	ropeNext ID

	// Leaf
	leafAccept Accept
}

// ID returns the state's identifier.
func (s *State) ID() ID { return s.id }

// Kind returns the state's kind.
func (s *State) Kind() Kind { return s.kind }

// Transitions returns a Fork's sorted, disjoint byte-range transitions.
// Returns nil for non-Fork states.
func (s *State) Transitions() []Transition {
	if s.kind != KindFork {
		return nil
	}
	return s.transitions
}

// Accept returns a Fork's accepting leaf and true, or (zero, false) if the
// Fork does not itself accept. Returns (zero, false) for non-Fork states.
func (s *State) Accept() (Accept, bool) {
	if s.kind != KindFork || s.accept == nil {
		return Accept{}, false
	}
	return *s.accept, true
}

// Early reports whether this Fork is marked "early" (§4.3): no further
// extension of the match can yield an equal- or higher-priority leaf
// (including a longer match of the same leaf), so codegen may return this
// leaf without exploring further.
// Always false until the optimize pass runs.
func (s *State) Early() bool {
	return s.kind == KindFork && s.early
}

// SetEarly marks a Fork as early. Called only by the optimize package.
func (s *State) SetEarly(early bool) {
	if s.kind == KindFork {
		s.early = early
	}
}

// Bytes returns a Rope's required byte run. Returns nil for non-Rope
// states.
func (s *State) Bytes() []byte {
	if s.kind != KindRope {
		return nil
	}
	return s.bytes
}

// RopeNext returns the state (a Fork or a Leaf) a Rope leads into. Returns InvalidID
// for non-Rope states.
func (s *State) RopeNext() ID {
	if s.kind != KindRope {
		return InvalidID
	}
	return s.ropeNext
}

// LeafAccept returns the accepting leaf of a Leaf state. Returns the zero
// Accept for non-Leaf states.
func (s *State) LeafAccept() Accept {
	if s.kind != KindLeaf {
		return Accept{}
	}
	return s.leafAccept
}

// NewFork constructs a Fork state. transitions must already be sorted by
// Lo and pairwise disjoint; accept is nil if the state does not itself
// accept.
func NewFork(id ID, transitions []Transition, accept *Accept) *State {
	return &State{id: id, kind: KindFork, transitions: transitions, accept: accept}
}

// NewRope constructs a Rope state. Used only by the optimize pass, which
// collapses single-byte transition chains produced by Build.
func NewRope(id ID, bytes []byte, next ID) *State {
	return &State{id: id, kind: KindRope, bytes: bytes, ropeNext: next}
}

// NewLeaf constructs a pure terminal Leaf state.
func NewLeaf(id ID, accept Accept) *State {
	return &State{id: id, kind: KindLeaf, leafAccept: accept}
}

// Graph is the merged, priority-resolved recognition graph (§3): a
// content-addressed DAG of Fork and Leaf states (Rope only after
// optimize) rooted at Root.
type Graph struct {
	Root   ID
	states []*State
}

// NewGraph constructs a Graph directly from a root id and a dense,
// id-indexed state slice. Used only by the optimize pass, which rebuilds
// the graph after rope collapsing and unreachable-state pruning change
// both the state contents and the id space.
func NewGraph(root ID, states []*State) *Graph {
	return &Graph{Root: root, states: states}
}

// State returns the state with the given id, or nil if none exists.
func (g *Graph) State(id ID) *State {
	if int(id) < 0 || int(id) >= len(g.states) {
		return nil
	}
	return g.states[id]
}

// States returns every state in the graph, indexed by ID.
func (g *Graph) States() []*State {
	return g.states
}

// Len returns the number of states in the graph.
func (g *Graph) Len() int {
	return len(g.states)
}
