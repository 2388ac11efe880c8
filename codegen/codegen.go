// Package codegen lowers an optimized recognition graph (§4.4) into a
// standalone Go source file: a static state machine that recognizes the
// longest match at each position and dispatches to the caller-supplied
// callback for the winning leaf. The generated file is self-contained —
// it imports nothing from this module — since it is meant to live in and
// be compiled as part of a downstream package, not linked against lexgraph
// at runtime (§5: build-time only, no wire/file format).
//
// codegen only emits the per-position recognizer. The surrounding
// iterator (slice/span/remainder/bump/morph<T>) is an external binding
// concern (§1's scope boundary) and is never generated here.
package codegen

import (
	"fmt"
	"go/format"

	"golang.org/x/tools/imports"

	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/optimize"
)

// Backend selects the generated code's control-flow shape (§4.5).
type Backend uint8

const (
	// BackendDispatchLoop generates a single function with a state-id
	// variable driven by a for/switch loop — one case per graph state.
	BackendDispatchLoop Backend = iota
	// BackendTailCall generates one function per graph state; a
	// transition is an ordinary tail call to the next state's function.
	BackendTailCall
)

// String returns a human-readable backend name.
func (b Backend) String() string {
	switch b {
	case BackendDispatchLoop:
		return "dispatch-loop"
	case BackendTailCall:
		return "tail-call"
	default:
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
}

// LeafInfo carries the per-leaf facts codegen needs that aren't part of
// the graph itself: the callback shape to dispatch on and the span used
// to name the leaf's generated identifiers and doc comments.
type LeafInfo struct {
	Shape leaf.CallbackShape
	Span  leaf.Span
}

// Options configures Generate.
type Options struct {
	// Package is the generated file's package clause.
	Package string
	// TypeName prefixes every generated identifier (function, type,
	// constant) so multiple generated lexers can coexist in one package.
	TypeName string
	Backend  Backend
	// Leaves maps every leaf.ID reachable in the graph to its LeafInfo.
	// Generate reports an error if a leaf the graph accepts is missing
	// from this map.
	Leaves map[leaf.ID]LeafInfo
}

// Generate lowers plan into formatted Go source implementing Options's
// chosen backend. The returned bytes are a complete, gofmt- and
// goimports-clean source file.
func Generate(plan *optimize.Plan, opts Options) ([]byte, error) {
	hasLeaf := false
	for _, s := range plan.Graph.States() {
		if s == nil {
			continue
		}
		if _, ok := s.Accept(); ok || s.Kind() == graph.KindLeaf {
			hasLeaf = true
			break
		}
	}
	if !hasLeaf {
		return nil, ErrEmptyGraph
	}
	if missing, ok := firstMissingLeaf(plan.Graph, opts.Leaves); !ok {
		return nil, &GenError{Backend: opts.Backend, Err: fmt.Errorf("leaf %d has no Options.Leaves entry", missing)}
	}
	b := newBuilder(opts)
	switch opts.Backend {
	case BackendDispatchLoop:
		b.emitDispatchLoop(plan)
	case BackendTailCall:
		b.emitTailCall(plan)
	default:
		return nil, &GenError{Backend: opts.Backend, Err: fmt.Errorf("unknown backend %d", opts.Backend)}
	}
	if b.err != nil {
		return nil, &GenError{Backend: opts.Backend, Err: b.err}
	}
	out, err := b.Format()
	if err != nil {
		return nil, &GenError{Backend: opts.Backend, Err: err}
	}
	return out, nil
}

// formatSource runs src through go/format and then goimports, the same
// two-step pipeline the nex lexer generator uses to turn a hand-assembled
// buffer of generated text into a clean, import-resolved source file.
func formatSource(src []byte) ([]byte, error) {
	src, err := format.Source(src)
	if err != nil {
		return src, err
	}
	return imports.Process("generated.go", src, &imports.Options{
		TabWidth:  8,
		TabIndent: true,
		Comments:  true,
		Fragment:  true,
	})
}
