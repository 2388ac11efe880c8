package lexgraph

import "github.com/lexgraph/lexgraph/leaf"

// DescriptorKind tags a Descriptor's Pattern as a literal string to match
// verbatim or a regular expression to parse (§3's pattern-descriptor
// "kind" field).
type DescriptorKind uint8

const (
	// KindRegex parses Pattern as a standard regular expression.
	KindRegex DescriptorKind = iota
	// KindLiteral matches Pattern verbatim, with no regex metacharacters.
	KindLiteral
)

// Descriptor is one pattern descriptor (§3): the external front-end's
// sole unit of input to Build. A Descriptor is immutable once it enters
// the pipeline — Build never mutates the slice it is given.
type Descriptor struct {
	// ID identifies this descriptor's leaf across the whole build. IDs
	// need not be contiguous but must be unique.
	ID leaf.ID

	// Kind selects how Pattern is interpreted.
	Kind DescriptorKind

	// Pattern is the literal text or regular expression to compile.
	Pattern string

	// Name labels this descriptor for diagnostics and for the generated
	// callback struct field/doc comments (§4.5); may be empty.
	Name string

	// Priority overrides the structurally derived priority (§4.2) when
	// non-nil.
	Priority *int

	// IgnoreCase requests case-insensitive matching regardless of any
	// inline regex flag.
	IgnoreCase bool

	// Skip marks this descriptor as a pure skip leaf: a match advances
	// token-start and re-enters the root state without ever yielding a
	// token, regardless of Shape. The generated code does not invoke the
	// leaf's callback when Skip is set, whatever its Shape.
	Skip bool

	// Shape is the callback return-shape the host will supply at
	// generated-code compile time (§3, §9).
	Shape leaf.CallbackShape

	// AllowGreedyDot opts this descriptor's pattern out of the unbounded
	// greedy-dot guard (§4.4).
	AllowGreedyDot bool
}
