// Package lexgraph composes the lexer-generator pipeline described across
// spec.md §2 and §5: a pattern descriptor list goes in, a generated Go
// recognizer file comes out. Build is the pipeline's sole entry point and
// is a pure function — no I/O, no shared mutable state, no asynchrony
// (§5): mir.Lower, leaf.Build, graph.Build, optimize.Optimize, and
// codegen.Generate run in sequence, and their only shared resource (the
// state-intern table owned internally by graph.Build) is discarded once
// codegen has run.
package lexgraph

import (
	"fmt"
	"regexp"

	"github.com/lexgraph/lexgraph/codegen"
	"github.com/lexgraph/lexgraph/diag"
	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
	"github.com/lexgraph/lexgraph/optimize"
)

// Diag holds the three pure-function dumps of the optimized recognition
// graph (§4.6). Populated only when Config.Debug is set.
type Diag struct {
	Text    []byte
	DOT     []byte
	Mermaid []byte
}

// Generated is Build's successful result.
type Generated struct {
	// Source is the formatted Go source of the generated recognizer.
	Source []byte

	// Graph is the optimized recognition graph codegen compiled Source
	// from, exposed so a caller can run its own diag dump on demand even
	// when Config.Debug was left off.
	Graph *graph.Graph

	// Diag is non-nil only when Config.Debug was set.
	Diag *Diag
}

// defaultSkipLeafID is the synthetic leaf id assigned to Config's
// DefaultSkipPattern. It is chosen out of the way of ordinary descriptor
// ids (which build.go never enforces a range on) by using the value one
// below the ID space's top rather than 0 or 1, where caller-assigned ids are most likely
// to collide.
const defaultSkipLeafID leaf.ID = 0xFFFFFFFE

// Build runs the full pipeline over descriptors: it lowers every
// descriptor's pattern to MIR, assigns priorities, merges the leaves into
// a recognition graph, runs the greedy-dot guard and rope/early-leaf
// optimization passes, and emits generated Go source. If cfg.Debug is set
// the optimized graph is additionally rendered via the diag package.
//
// Returns the first pipeline-stage error encountered, wrapped with the
// offending descriptor's id where one applies; sentinel errors from
// mir, leaf, graph, optimize, and codegen remain reachable through
// errors.As/errors.Is.
func Build(descriptors []Descriptor, cfg Config) (*Generated, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reqs := make([]leaf.Request, 0, len(descriptors)+1)
	mirByID := make(map[leaf.ID]*mir.Node, len(descriptors)+1)

	for _, d := range descriptors {
		node, err := lowerDescriptor(d, cfg)
		if err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", d.ID, err)
		}
		shape := d.Shape
		shape.Skip = shape.Skip || d.Skip
		reqs = append(reqs, leaf.Request{
			ID:               d.ID,
			MIR:              node,
			ExplicitPriority: d.Priority,
			Shape:            shape,
			Flags:            leaf.Flags{IgnoreCase: d.IgnoreCase, ExplicitPriority: d.Priority != nil, AllowGreedyDot: d.AllowGreedyDot},
			Span:             leaf.Span{PatternName: d.Name, Pattern: d.Pattern},
		})
		mirByID[d.ID] = node
	}

	if cfg.DefaultSkipPattern != "" {
		node, err := mir.Lower("", cfg.DefaultSkipPattern, mir.Options{
			Unicode:  cfg.Unicode,
			RawBytes: cfg.SourceKind == SourceRawBytes,
		})
		if err != nil {
			return nil, fmt.Errorf("default skip pattern: %w", err)
		}
		lowest := -1
		reqs = append(reqs, leaf.Request{
			ID:               defaultSkipLeafID,
			MIR:              node,
			ExplicitPriority: &lowest,
			Shape:            leaf.CallbackShape{Kind: leaf.ShapeSkip},
			Flags:            leaf.Flags{ExplicitPriority: true, AllowGreedyDot: true},
			Span:             leaf.Span{PatternName: "DefaultSkip", Pattern: cfg.DefaultSkipPattern},
		})
		mirByID[defaultSkipLeafID] = node
	}

	leaves, err := leaf.Build(reqs)
	if err != nil {
		return nil, err
	}

	inputs := make([]graph.Input, len(leaves))
	greedyInputs := make([]optimize.GreedyDotInput, len(leaves))
	codegenLeaves := make(map[leaf.ID]codegen.LeafInfo, len(leaves))
	for i, l := range leaves {
		node := mirByID[l.ID]
		inputs[i] = graph.Input{Leaf: l, MIR: node}
		greedyInputs[i] = optimize.GreedyDotInput{LeafID: l.ID, MIR: node, Span: l.Span, Allow: l.Flags.AllowGreedyDot}
		codegenLeaves[l.ID] = codegen.LeafInfo{Shape: l.Shape, Span: l.Span}
	}

	g, err := graph.Build(inputs)
	if err != nil {
		return nil, err
	}

	plan, err := optimize.Optimize(g, greedyInputs)
	if err != nil {
		return nil, err
	}

	src, err := codegen.Generate(plan, codegen.Options{
		Package:  cfg.Package,
		TypeName: cfg.TypeName,
		Backend:  cfg.Backend,
		Leaves:   codegenLeaves,
	})
	if err != nil {
		return nil, err
	}

	out := &Generated{Source: src, Graph: plan.Graph}
	if cfg.Debug {
		out.Diag = &Diag{
			Text:    diag.DumpText(plan.Graph),
			DOT:     diag.DumpDOT(plan.Graph),
			Mermaid: diag.DumpMermaid(plan.Graph),
		}
	}
	return out, nil
}

// lowerDescriptor lowers d's pattern to MIR, escaping it as a literal
// first when d.Kind requests verbatim matching.
func lowerDescriptor(d Descriptor, cfg Config) (*mir.Node, error) {
	pattern := d.Pattern
	if d.Kind == KindLiteral {
		pattern = regexp.QuoteMeta(pattern)
	}
	return mir.Lower(d.Name, pattern, mir.Options{
		IgnoreCase:  d.IgnoreCase,
		Unicode:     cfg.Unicode,
		RawBytes:    cfg.SourceKind == SourceRawBytes,
		Subpatterns: cfg.Subpatterns,
	})
}
