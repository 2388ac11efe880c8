package optimize

import (
	"errors"
	"testing"

	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
)

func concatBytes(s string) *mir.Node {
	subs := make([]*mir.Node, len(s))
	for i := 0; i < len(s); i++ {
		subs[i] = mir.Byte(s[i])
	}
	return mir.Concat(subs...)
}

func buildGraph(t *testing.T, inputs []graph.Input) *graph.Graph {
	t.Helper()
	g, err := graph.Build(inputs)
	if err != nil {
		t.Fatalf("graph.Build() error = %v", err)
	}
	return g
}

func TestCollapseAndPruneBuildsRope(t *testing.T) {
	word := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Word"})
	g := buildGraph(t, []graph.Input{{Leaf: word, MIR: concatBytes("wxyz")}})

	optimized := collapseAndPrune(g)

	root := optimized.State(optimized.Root)
	if root.Kind() != graph.KindRope {
		t.Fatalf("root Kind() = %v, want KindRope", root.Kind())
	}
	if string(root.Bytes()) != "wxyz" {
		t.Errorf("root Bytes() = %q, want %q", root.Bytes(), "wxyz")
	}
	next := optimized.State(root.RopeNext())
	if next.Kind() != graph.KindLeaf {
		t.Fatalf("RopeNext Kind() = %v, want KindLeaf", next.Kind())
	}
	if next.LeafAccept().LeafID != 1 {
		t.Errorf("RopeNext LeafAccept().LeafID = %v, want 1", next.LeafAccept().LeafID)
	}
}

func TestCollapseAndPruneStopsAtAcceptingState(t *testing.T) {
	// "fast" and "faster" share a 4-byte prefix. The state after
	// consuming "fast" accepts Fast itself (as well as continuing on
	// 'e' toward Faster), so it cannot be folded into the interior of a
	// Rope's byte run — "no accepting state in between" (§4.4) — even
	// though its own indegree is 1. The rope still collapses up through
	// that state, with it kept as the rope's own ropeNext.
	fast := leaf.New(1, 10, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Fast"})
	faster := leaf.New(2, 10, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Faster"})
	g := buildGraph(t, []graph.Input{
		{Leaf: fast, MIR: concatBytes("fast")},
		{Leaf: faster, MIR: concatBytes("faster")},
	})

	optimized := collapseAndPrune(g)

	root := optimized.State(optimized.Root)
	if root.Kind() != graph.KindRope {
		t.Fatalf("root Kind() = %v, want KindRope", root.Kind())
	}
	if string(root.Bytes()) != "fast" {
		t.Errorf("root Bytes() = %q, want %q", root.Bytes(), "fast")
	}
	branch := optimized.State(root.RopeNext())
	if branch.Kind() != graph.KindFork {
		t.Fatalf("branch Kind() = %v, want KindFork", branch.Kind())
	}
	a, has := branch.Accept()
	if !has || a.LeafID != 1 {
		t.Errorf("branch after \"fast\" accept = (%v,%v), want (Fast,true)", a, has)
	}
	if len(branch.Transitions()) != 1 || branch.Transitions()[0].Lo != 'e' {
		t.Errorf("branch Transitions() = %v, want single 'e' transition", branch.Transitions())
	}
}

func TestDispatchModeChosenByDensity(t *testing.T) {
	few := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Few"})
	gFew := buildGraph(t, []graph.Input{{Leaf: few, MIR: mir.Class([][2]byte{{'a', 'a'}, {'c', 'c'}})}})
	modesFew := computeDispatch(gFew)
	if modesFew[gFew.Root] != DispatchChain {
		t.Errorf("2 narrow ranges: dispatch = %v, want DispatchChain", modesFew[gFew.Root])
	}

	many := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Many"})
	gMany := buildGraph(t, []graph.Input{{Leaf: many, MIR: mir.Class([][2]byte{{'a', 'a'}, {'c', 'c'}, {'e', 'e'}, {'g', 'g'}})}})
	modesMany := computeDispatch(gMany)
	if modesMany[gMany.Root] != DispatchTable {
		t.Errorf("4 ranges: dispatch = %v, want DispatchTable", modesMany[gMany.Root])
	}
}

func TestGreedyDotGuardRejectsUnboundedAnyRepeat(t *testing.T) {
	n, err := mir.Lower("dotted", "a.*b", mir.Options{RawBytes: true})
	if err != nil {
		t.Fatalf("mir.Lower() error = %v", err)
	}

	err = checkGreedyDot([]GreedyDotInput{{
		LeafID: 1,
		MIR:    n,
		Span:   leaf.Span{PatternName: "dotted", Pattern: "a.*b"},
	}})
	if !errors.Is(err, ErrGreedyDot) {
		t.Fatalf("error = %v, want ErrGreedyDot", err)
	}
}

func TestGreedyDotGuardHonorsOptIn(t *testing.T) {
	n, err := mir.Lower("dotted", "a.*b", mir.Options{RawBytes: true})
	if err != nil {
		t.Fatalf("mir.Lower() error = %v", err)
	}

	err = checkGreedyDot([]GreedyDotInput{{
		LeafID: 1,
		MIR:    n,
		Span:   leaf.Span{PatternName: "dotted", Pattern: "a.*b"},
		Allow:  true,
	}})
	if err != nil {
		t.Errorf("checkGreedyDot() with Allow = true: error = %v, want nil", err)
	}
}

func TestGreedyDotGuardAllowsBoundedRepeat(t *testing.T) {
	n, err := mir.Lower("dotted", "a.{0,3}b", mir.Options{RawBytes: true})
	if err != nil {
		t.Fatalf("mir.Lower() error = %v", err)
	}

	err = checkGreedyDot([]GreedyDotInput{{LeafID: 1, MIR: n}})
	if err != nil {
		t.Errorf("bounded repeat: error = %v, want nil", err)
	}
}

func TestMarkEarlyHigherPriorityLiteralIsEarly(t *testing.T) {
	// Scenario 1's shape: Fast="fast"(8) vs Text=[a-zA-Z]+(1). After the
	// full literal "fast" is consumed, nothing reachable from there beats
	// priority 8, so that state should be marked early even though Text's
	// continuation is still reachable one byte further in.
	fast := leaf.New(1, 8, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Fast"})
	text := leaf.New(2, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Text"})
	letters := mir.Class([][2]byte{{'a', 'z'}, {'A', 'Z'}})

	g := buildGraph(t, []graph.Input{
		{Leaf: fast, MIR: concatBytes("fast")},
		{Leaf: text, MIR: mir.Repeat(letters, 1, mir.Unbounded, true)},
	})
	optimized := collapseAndPrune(g)
	markEarly(optimized)

	cur := optimized.State(optimized.Root)
	for _, b := range []byte("fast") {
		switch cur.Kind() {
		case graph.KindRope:
			cur = optimized.State(cur.RopeNext())
		case graph.KindFork:
			var next graph.ID = graph.InvalidID
			for _, tr := range cur.Transitions() {
				if b >= tr.Lo && b <= tr.Hi {
					next = tr.Next
					break
				}
			}
			if next == graph.InvalidID {
				t.Fatalf("no transition for byte %q while walking \"fast\"", b)
			}
			cur = optimized.State(next)
		default:
			t.Fatalf("unexpected state kind %v mid-walk", cur.Kind())
		}
	}

	a, has := cur.Accept()
	if !has || a.LeafID != 1 {
		t.Fatalf("state after \"fast\" accept = (%v,%v), want (Fast,true)", a, has)
	}
	if !cur.Early() {
		t.Errorf("state after \"fast\" should be marked early")
	}
}

func TestMarkEarlyPrefixOfHigherPriorityLiteralIsLate(t *testing.T) {
	// Lo="a" (priority 1), Hi="ab" (priority 5): the state reached after
	// consuming just "a" accepts Lo, but Hi is still reachable one byte
	// further and outranks it — that state must stay late.
	lo := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Lo"})
	hi := leaf.New(2, 5, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Hi"})

	g := buildGraph(t, []graph.Input{
		{Leaf: lo, MIR: mir.Byte('a')},
		{Leaf: hi, MIR: concatBytes("ab")},
	})
	optimized := collapseAndPrune(g)
	markEarly(optimized)

	root := optimized.State(optimized.Root)
	if root.Kind() != graph.KindFork || len(root.Transitions()) != 1 {
		t.Fatalf("root = %+v, want a single-transition Fork on 'a'", root)
	}
	afterA := optimized.State(root.Transitions()[0].Next)
	a, has := afterA.Accept()
	if !has || a.LeafID != 1 {
		t.Fatalf("state after \"a\" accept = (%v,%v), want (Lo,true)", a, has)
	}
	if afterA.Early() {
		t.Errorf("state after \"a\" should stay late: Hi(5) is still reachable one byte further")
	}
}
