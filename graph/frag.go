package graph

import (
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
)

// fragStateID identifies a state in the intermediate fragment automaton
// built per-MIR before subset construction merges everything into the
// final Graph. This layer exists only inside Build; nothing outside this
// package ever sees a fragStateID.
type fragStateID uint32

const fragInvalid fragStateID = 0xFFFFFFFF

// fragKind mirrors the teacher's nfa.StateKind split between epsilon-only
// states (Split, Epsilon) and consuming states (ByteRange), plus a Match
// terminal that nfa.State doesn't need (the teacher's NFA matches by
// construction reaching a designated match state; here every leaf needs
// its own distinguishable terminal so priority can be resolved per-leaf
// during the merge).
type fragKind uint8

const (
	fragSplit fragKind = iota
	fragByteRange
	fragEpsilon
	fragMatch
)

// fragState is one state of a per-MIR Thompson fragment automaton, built
// and patched the same way nfa.Builder's start/end fragment pattern works
// (see nfa/compile.go's compileConcat/compileAlternate/compileStar): a
// fragment exposes a start id and an end id, and the end is always an
// unpatched placeholder (Epsilon or Split with fragInvalid targets, or a
// ByteRange with a fragInvalid next) until the caller patches it to
// whatever comes next.
type fragState struct {
	kind fragKind

	// ByteRange
	lo, hi byte
	next   fragStateID

	// Split
	left, right fragStateID

	// Match
	leafID   leaf.ID
	priority int
}

// fragBuilder accumulates fragment states for every leaf's MIR before
// subset construction runs over all of them at once.
type fragBuilder struct {
	states []fragState
}

func (b *fragBuilder) addByteRange(lo, hi byte, next fragStateID) fragStateID {
	id := fragStateID(len(b.states))
	b.states = append(b.states, fragState{kind: fragByteRange, lo: lo, hi: hi, next: next})
	return id
}

func (b *fragBuilder) addSplit(left, right fragStateID) fragStateID {
	id := fragStateID(len(b.states))
	b.states = append(b.states, fragState{kind: fragSplit, left: left, right: right})
	return id
}

func (b *fragBuilder) addEpsilon(next fragStateID) fragStateID {
	id := fragStateID(len(b.states))
	b.states = append(b.states, fragState{kind: fragEpsilon, next: next})
	return id
}

func (b *fragBuilder) addMatch(leafID leaf.ID, priority int) fragStateID {
	id := fragStateID(len(b.states))
	b.states = append(b.states, fragState{kind: fragMatch, leafID: leafID, priority: priority})
	return id
}

// patch connects an unpatched fragment end to target, filling in whichever
// placeholder field is still fragInvalid. Mirrors nfa/builder.go's Patch.
func (b *fragBuilder) patch(id, target fragStateID) {
	s := &b.states[id]
	switch s.kind {
	case fragEpsilon:
		s.next = target
	case fragByteRange:
		if s.next == fragInvalid {
			s.next = target
		}
	case fragSplit:
		if s.left == fragInvalid {
			s.left = target
		} else if s.right == fragInvalid {
			s.right = target
		}
	}
}

// compileEmpty returns a fragment matching the empty string: a single
// unpatched epsilon state serving as both its own start and end.
func compileEmpty(b *fragBuilder) (start, end fragStateID) {
	id := b.addEpsilon(fragInvalid)
	return id, id
}

// buildSplitChain builds a right-leaning binary tree of Split states
// distributing to every target, mirroring nfa/compile.go's
// buildSplitChain used for alternation with more than two branches.
func buildSplitChain(b *fragBuilder, targets []fragStateID) fragStateID {
	if len(targets) == 1 {
		return targets[0]
	}
	if len(targets) == 2 {
		return b.addSplit(targets[0], targets[1])
	}
	right := buildSplitChain(b, targets[1:])
	return b.addSplit(targets[0], right)
}

// compileStar compiles body* (greedy prefers continuing over exiting).
func compileStar(b *fragBuilder, body *mir.Node, greedy bool) (start, end fragStateID) {
	subStart, subEnd := compileNode(b, body)
	end = b.addEpsilon(fragInvalid)
	var split fragStateID
	if greedy {
		split = b.addSplit(subStart, end)
	} else {
		split = b.addSplit(end, subStart)
	}
	b.patch(subEnd, split)
	return split, end
}

// compileQuest compiles body? (greedy prefers entering over skipping).
func compileQuest(b *fragBuilder, body *mir.Node, greedy bool) (start, end fragStateID) {
	subStart, subEnd := compileNode(b, body)
	end = b.addEpsilon(fragInvalid)
	b.patch(subEnd, end)
	var split fragStateID
	if greedy {
		split = b.addSplit(subStart, end)
	} else {
		split = b.addSplit(end, subStart)
	}
	return split, end
}

// compileRepeatExact compiles n back-to-back copies of body, mirroring
// nfa/compile.go's compileRepeatExact.
func compileRepeatExact(b *fragBuilder, body *mir.Node, n int) (start, end fragStateID) {
	if n == 0 {
		return compileEmpty(b)
	}
	start, end = compileNode(b, body)
	for i := 1; i < n; i++ {
		ns, ne := compileNode(b, body)
		b.patch(end, ns)
		end = ne
	}
	return start, end
}

// compileRepeatMin compiles body{min,} as min copies followed by body*,
// mirroring nfa/compile.go's compileRepeatMin.
func compileRepeatMin(b *fragBuilder, body *mir.Node, min int, greedy bool) (start, end fragStateID) {
	if min == 0 {
		return compileStar(b, body, greedy)
	}
	start, end = compileNode(b, body)
	for i := 1; i < min; i++ {
		ns, ne := compileNode(b, body)
		b.patch(end, ns)
		end = ne
	}
	sStart, sEnd := compileStar(b, body, greedy)
	b.patch(end, sStart)
	return start, sEnd
}

// compileRepeatRange compiles body{min,max} as min mandatory copies
// followed by (max-min) optional copies, mirroring nfa/compile.go's
// compileRepeatRange.
func compileRepeatRange(b *fragBuilder, body *mir.Node, min, max int, greedy bool) (start, end fragStateID) {
	haveStart := false
	for i := 0; i < min; i++ {
		ns, ne := compileNode(b, body)
		if !haveStart {
			start, end = ns, ne
			haveStart = true
		} else {
			b.patch(end, ns)
			end = ne
		}
	}
	for i := 0; i < max-min; i++ {
		qs, qe := compileQuest(b, body, greedy)
		if !haveStart {
			start, end = qs, qe
			haveStart = true
		} else {
			b.patch(end, qs)
			end = qe
		}
	}
	if !haveStart {
		return compileEmpty(b)
	}
	return start, end
}

func compileRepeat(b *fragBuilder, n *mir.Node) (start, end fragStateID) {
	body, min, max, greedy := n.Repeat()
	if max == mir.Unbounded {
		return compileRepeatMin(b, body, min, greedy)
	}
	if min == max {
		return compileRepeatExact(b, body, min)
	}
	return compileRepeatRange(b, body, min, max, greedy)
}

// compileNode compiles n into a fragment, returning its unpatched start
// and end. Safe to call the same *mir.Node more than once (as bounded
// repeats do): it only ever reads n, producing fresh fragment states each
// time, the same way the teacher's compileRegexp is called once per
// unrolled repeat copy on the same *syntax.Regexp.
func compileNode(b *fragBuilder, n *mir.Node) (start, end fragStateID) {
	switch n.Kind() {
	case mir.KindEmpty:
		return compileEmpty(b)

	case mir.KindByteRange:
		lo, hi := n.ByteRange()
		end = b.addEpsilon(fragInvalid)
		start = b.addByteRange(lo, hi, end)
		return start, end

	case mir.KindConcat:
		children := n.Children()
		if len(children) == 0 {
			return compileEmpty(b)
		}
		start, end = compileNode(b, children[0])
		for _, c := range children[1:] {
			ns, ne := compileNode(b, c)
			b.patch(end, ns)
			end = ne
		}
		return start, end

	case mir.KindAlt:
		children := n.Children()
		starts := make([]fragStateID, len(children))
		ends := make([]fragStateID, len(children))
		for i, c := range children {
			starts[i], ends[i] = compileNode(b, c)
		}
		split := buildSplitChain(b, starts)
		join := b.addEpsilon(fragInvalid)
		for _, e := range ends {
			b.patch(e, join)
		}
		return split, join

	case mir.KindRepeat:
		return compileRepeat(b, n)

	default:
		panic("graph: compileNode: unreachable mir.Kind")
	}
}
