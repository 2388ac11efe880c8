package graph

import (
	"errors"
	"testing"

	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
)

// simulate drives g over input the way a generated lexer loop would
// (§4.3's "longest match with priority" rule): follow transitions while
// they exist, remember the most recent accepting leaf and the position
// it was seen at, and on the first miss (or end of input) return that
// last-accepted leaf.
func simulate(t *testing.T, g *Graph, input []byte) (id leaf.ID, length int, ok bool) {
	t.Helper()
	cur := g.State(g.Root)
	var lastID leaf.ID
	lastLen := -1

	for pos := 0; ; pos++ {
		switch cur.Kind() {
		case KindLeaf:
			a := cur.LeafAccept()
			return a.LeafID, pos, true
		case KindFork:
			if a, has := cur.Accept(); has {
				lastID, lastLen = a.LeafID, pos
			}
			if pos == len(input) {
				if lastLen >= 0 {
					return lastID, lastLen, true
				}
				return 0, 0, false
			}
			b := input[pos]
			next := InvalidID
			for _, tr := range cur.Transitions() {
				if b >= tr.Lo && b <= tr.Hi {
					next = tr.Next
					break
				}
			}
			if next == InvalidID {
				if lastLen >= 0 {
					return lastID, lastLen, true
				}
				return 0, 0, false
			}
			cur = g.State(next)
		default:
			t.Fatalf("unexpected state kind %v mid-walk", cur.Kind())
		}
	}
}

func concatBytes(s string) *mir.Node {
	subs := make([]*mir.Node, len(s))
	for i := 0; i < len(s); i++ {
		subs[i] = mir.Byte(s[i])
	}
	return mir.Concat(subs...)
}

func TestBuildLiteralFastPathSharesPrefix(t *testing.T) {
	g, err := Build([]Input{
		{Leaf: leaf.New(1, 10, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Fast"}), MIR: concatBytes("fast")},
		{Leaf: leaf.New(2, 10, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Faster"}), MIR: concatBytes("faster")},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	id, length, ok := simulate(t, g, []byte("faster"))
	if !ok || id != 2 || length != 6 {
		t.Errorf("simulate(%q) = (%d,%d,%v), want (2,6,true)", "faster", id, length, ok)
	}
	id, length, ok = simulate(t, g, []byte("fast"))
	if !ok || id != 1 || length != 4 {
		t.Errorf("simulate(%q) = (%d,%d,%v), want (1,4,true)", "fast", id, length, ok)
	}
}

func TestBuildScenarioOnePriority(t *testing.T) {
	// Mirrors §8 Scenario 1: Fast="fast"(8), Period="."(2), Text=[a-zA-Z]+(1).
	fast := leaf.New(1, 8, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Fast"})
	period := leaf.New(2, 2, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Period"})
	text := leaf.New(3, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Text"})

	letters := mir.Class([][2]byte{{'a', 'z'}, {'A', 'Z'}})
	g, err := Build([]Input{
		{Leaf: fast, MIR: concatBytes("fast")},
		{Leaf: period, MIR: mir.Byte('.')},
		{Leaf: text, MIR: mir.Repeat(letters, 1, mir.Unbounded, true)},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	id, length, ok := simulate(t, g, []byte("fast"))
	if !ok || id != 1 || length != 4 {
		t.Errorf("simulate(%q) = (%d,%d,%v), want (1,4,true) — Fast(8) beats Text(1) at the same length", "fast", id, length, ok)
	}

	id, length, ok = simulate(t, g, []byte("Lexers."))
	if !ok || id != 3 || length != 6 {
		t.Errorf("simulate(%q) = (%d,%d,%v), want (3,6,true)", "Lexers.", id, length, ok)
	}

	id, length, ok = simulate(t, g, []byte("."))
	if !ok || id != 2 || length != 1 {
		t.Errorf("simulate(%q) = (%d,%d,%v), want (2,1,true)", ".", id, length, ok)
	}
}

func TestBuildEqualPriorityAmbiguous(t *testing.T) {
	a := leaf.New(1, 5, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "A"})
	b := leaf.New(2, 5, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "B"})

	_, err := Build([]Input{
		{Leaf: a, MIR: concatBytes("cat")},
		{Leaf: b, MIR: concatBytes("cat")},
	})
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("error = %v, want ErrAmbiguous", err)
	}
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *BuildError", err)
	}
	if len(be.Spans) != 2 {
		t.Errorf("BuildError.Spans = %v, want both leaf spans named", be.Spans)
	}
}

func TestBuildDisjointPrioritiesNotAmbiguous(t *testing.T) {
	// Two patterns reach the same state but at different priorities:
	// not ambiguous, the higher priority simply wins.
	hi := leaf.New(1, 9, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Hi"})
	lo := leaf.New(2, 3, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Lo"})

	g, err := Build([]Input{
		{Leaf: hi, MIR: concatBytes("dog")},
		{Leaf: lo, MIR: concatBytes("dog")},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	id, length, ok := simulate(t, g, []byte("dog"))
	if !ok || id != 1 || length != 3 {
		t.Errorf("simulate(%q) = (%d,%d,%v), want (1,3,true)", "dog", id, length, ok)
	}
}

func TestBuildEmptyInputsProduceDeadFork(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	root := g.State(g.Root)
	if root.Kind() != KindFork {
		t.Fatalf("Kind() = %v, want KindFork", root.Kind())
	}
	if _, has := root.Accept(); has {
		t.Errorf("empty graph's root should not accept")
	}
	if len(root.Transitions()) != 0 {
		t.Errorf("empty graph's root should have no transitions")
	}
}
