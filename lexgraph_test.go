package lexgraph

import (
	"strings"
	"testing"

	"github.com/lexgraph/lexgraph/codegen"
	"github.com/lexgraph/lexgraph/leaf"
)

func TestBuildEndToEndProducesSource(t *testing.T) {
	descriptors := []Descriptor{
		{ID: 1, Kind: KindLiteral, Pattern: "if", Name: "If", Shape: leaf.CallbackShape{Kind: leaf.ShapeNone}},
		{ID: 2, Kind: KindRegex, Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Name: "Ident", Shape: leaf.CallbackShape{Kind: leaf.ShapeValue}},
	}
	cfg := DefaultConfig()
	cfg.DefaultSkipPattern = `[ \t\n]+`

	got, err := Build(descriptors, cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	text := string(got.Source)

	for _, want := range []string{
		"package lexed",
		"func LexScan(",
		"LexIdent func(text []byte) any",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Build().Source missing %q\n--- source ---\n%s", want, text)
		}
	}
	if got.Graph == nil {
		t.Fatalf("Build().Graph = nil")
	}
	if got.Diag != nil {
		t.Fatalf("Build().Diag = %+v, want nil when Debug is unset", got.Diag)
	}
}

func TestBuildWithDebugPopulatesDiag(t *testing.T) {
	descriptors := []Descriptor{
		{ID: 1, Kind: KindLiteral, Pattern: "if", Name: "If", Shape: leaf.CallbackShape{Kind: leaf.ShapeNone}},
	}
	cfg := DefaultConfig()
	cfg.Debug = true

	got, err := Build(descriptors, cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got.Diag == nil {
		t.Fatalf("Build().Diag = nil, want populated diag dumps")
	}
	if !strings.Contains(string(got.Diag.DOT), "digraph") {
		t.Errorf("Build().Diag.DOT missing digraph header:\n%s", got.Diag.DOT)
	}
	if !strings.Contains(string(got.Diag.Mermaid), "stateDiagram-v2") {
		t.Errorf("Build().Diag.Mermaid missing stateDiagram-v2 header:\n%s", got.Diag.Mermaid)
	}
	if !strings.Contains(string(got.Diag.Text), "leaves (") {
		t.Errorf("Build().Diag.Text missing leaf listing:\n%s", got.Diag.Text)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := Build(nil, Config{})
	if err == nil {
		t.Fatalf("Build() with zero Config: error = nil, want a ConfigError")
	}
}

func TestBuildPropagatesLowerError(t *testing.T) {
	descriptors := []Descriptor{
		{ID: 1, Kind: KindRegex, Pattern: "(", Name: "Bad"},
	}
	_, err := Build(descriptors, DefaultConfig())
	if err == nil {
		t.Fatalf("Build() with invalid regex: error = nil, want non-nil")
	}
}

func TestBuildDefaultConfigUsesDispatchLoopBackend(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend != codegen.BackendDispatchLoop {
		t.Errorf("DefaultConfig().Backend = %v, want %v", cfg.Backend, codegen.BackendDispatchLoop)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v, want nil", err)
	}
}
