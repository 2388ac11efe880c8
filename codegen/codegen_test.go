package codegen

import (
	"strings"
	"testing"

	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
	"github.com/lexgraph/lexgraph/optimize"
)

func buildPlan(t *testing.T, inputs []graph.Input) *optimize.Plan {
	t.Helper()
	g, err := graph.Build(inputs)
	if err != nil {
		t.Fatalf("graph.Build() error = %v", err)
	}
	plan, err := optimize.Optimize(g, nil)
	if err != nil {
		t.Fatalf("optimize.Optimize() error = %v", err)
	}
	return plan
}

func concatBytes(s string) *mir.Node {
	subs := make([]*mir.Node, len(s))
	for i := 0; i < len(s); i++ {
		subs[i] = mir.Byte(s[i])
	}
	return mir.Concat(subs...)
}

func wordOptions(id leaf.ID, shape leaf.CallbackShape, name string) Options {
	return Options{
		Package:  "lexed",
		TypeName: "Lex",
		Leaves: map[leaf.ID]LeafInfo{
			id: {Shape: shape, Span: leaf.Span{PatternName: name}},
		},
	}
}

func TestGenerateDispatchLoopProducesScanEntryPoint(t *testing.T) {
	word := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeValue}, leaf.Flags{}, leaf.Span{PatternName: "Word"})
	plan := buildPlan(t, []graph.Input{{Leaf: word, MIR: concatBytes("if")}})

	opts := wordOptions(1, leaf.CallbackShape{Kind: leaf.ShapeValue}, "Word")
	opts.Backend = BackendDispatchLoop

	src, err := Generate(plan, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(src)

	for _, want := range []string{
		"package lexed",
		"func LexScan(",
		"func lexdispatch(",
		"func lexscanOnce(",
		"type LexToken struct",
		"type LexCallbacks struct",
		"LexWord func(text []byte) any",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("generated source missing %q\n--- source ---\n%s", want, text)
		}
	}
}

func TestGenerateTailCallProducesPerStateFunctions(t *testing.T) {
	word := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Word"})
	plan := buildPlan(t, []graph.Input{{Leaf: word, MIR: concatBytes("if")}})

	opts := wordOptions(1, leaf.CallbackShape{Kind: leaf.ShapeNone}, "Word")
	opts.Backend = BackendTailCall

	src, err := Generate(plan, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(src)

	if !strings.Contains(text, "func LexState") {
		t.Errorf("generated source missing per-state functions\n--- source ---\n%s", text)
	}
	if !strings.Contains(text, "func lexscanOnce(") {
		t.Errorf("generated source missing scanOnce entry point\n--- source ---\n%s", text)
	}
}

func TestGenerateRejectsEmptyGraph(t *testing.T) {
	_, err := Generate(&optimize.Plan{Graph: graph.NewGraph(0, nil)}, Options{Backend: BackendDispatchLoop})
	if err == nil {
		t.Fatalf("Generate() with empty graph: error = nil, want ErrEmptyGraph")
	}
}

func TestGenerateUnknownBackend(t *testing.T) {
	word := leaf.New(1, 1, leaf.CallbackShape{Kind: leaf.ShapeNone}, leaf.Flags{}, leaf.Span{PatternName: "Word"})
	plan := buildPlan(t, []graph.Input{{Leaf: word, MIR: mir.Byte('a')}})

	opts := wordOptions(1, leaf.CallbackShape{Kind: leaf.ShapeNone}, "Word")
	opts.Backend = Backend(99)

	_, err := Generate(plan, opts)
	if err == nil {
		t.Fatalf("Generate() with unknown backend: error = nil, want non-nil")
	}
}

func TestCallbackSignatures(t *testing.T) {
	cases := []struct {
		kind leaf.ShapeKind
		want string
	}{
		{leaf.ShapeUnit, "func(text []byte)"},
		{leaf.ShapeBool, "func(text []byte) bool"},
		{leaf.ShapeValue, "func(text []byte) any"},
		{leaf.ShapeOption, "func(text []byte) (any, bool)"},
		{leaf.ShapeResult, "func(text []byte) (any, error)"},
		{leaf.ShapeFilter, "func(text []byte) bool"},
		{leaf.ShapeNone, ""},
		{leaf.ShapeSkip, ""},
	}
	for _, c := range cases {
		if got := callbackSignature(c.kind); got != c.want {
			t.Errorf("callbackSignature(%v) = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestRangeCond(t *testing.T) {
	if got := rangeCond("c", 'a', 'a'); got != "c == 97" {
		t.Errorf("rangeCond single byte = %q, want %q", got, "c == 97")
	}
	if got := rangeCond("c", 'a', 'z'); got != "c >= 97 && c <= 122" {
		t.Errorf("rangeCond range = %q, want %q", got, "c >= 97 && c <= 122")
	}
}
