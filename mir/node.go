// Package mir implements the pattern parser and medium intermediate
// representation (MIR) lowering stage of the lexer-generator pipeline.
//
// Each token pattern — literal or regex — is parsed and lowered into a
// normalized MIR tree over byte ranges: Empty, ByteRange, Concat, Alt, and
// Repeat. The MIR is the leaf builder's and graph builder's only view of a
// pattern; neither ever sees the original pattern text or syntax tree.
package mir

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the type of MIR node and determines which fields are
// valid, mirroring the teacher's tagged-variant State/StateKind shape
// rather than an open interface hierarchy — there are exactly five kinds
// and no more are ever added.
type Kind uint8

const (
	// KindEmpty matches the empty string and consumes no input.
	KindEmpty Kind = iota

	// KindByteRange matches a single byte in [Lo, Hi] inclusive.
	KindByteRange

	// KindConcat matches each child in sequence.
	KindConcat

	// KindAlt matches any one of its children (the children are
	// de-duplicated and have no defined precedence among themselves —
	// precedence among overlapping alternatives is a leaf-priority
	// concern, not a MIR concern).
	KindAlt

	// KindRepeat matches its single child between Min and Max times
	// (Max == Unbounded for an open upper bound).
	KindRepeat
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindByteRange:
		return "ByteRange"
	case KindConcat:
		return "Concat"
	case KindAlt:
		return "Alt"
	case KindRepeat:
		return "Repeat"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Unbounded is the Max value of a Repeat node with no upper bound.
const Unbounded = -1

// Node is a single MIR tree node. The Kind field determines which of the
// remaining fields are meaningful, the same discipline the teacher's NFA
// State struct uses for its five state kinds.
type Node struct {
	kind Kind

	// ByteRange
	lo, hi byte

	// Concat (ordered), Alt (de-duplicated, unordered in principle but
	// kept in first-seen order for deterministic codegen), Repeat (len 1)
	sub []*Node

	// Repeat
	min, max int
	greedy   bool

	// isAny marks a node as the lowered form of a dot-equivalent class
	// ("any byte"/"any Unicode scalar value", optionally excluding
	// newline). Only the lowerer sets this; it lets the greedy-dot guard
	// (§4.4) recognize Repeat(any, ...) without re-deriving the class's
	// meaning from its byte ranges.
	isAny bool
}

// IsAnyClass reports whether n is the lowered form of a dot-equivalent
// class, as produced by mir.Lower for `.`.
func (n *Node) IsAnyClass() bool { return n.isAny }

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// ByteRange returns the inclusive byte range for a KindByteRange node.
// Returns (0, 0) for any other kind.
func (n *Node) ByteRange() (lo, hi byte) {
	if n.kind != KindByteRange {
		return 0, 0
	}
	return n.lo, n.hi
}

// Children returns the sub-nodes of a Concat or Alt node, or the
// single-element slice holding a Repeat's body. Returns nil otherwise.
func (n *Node) Children() []*Node {
	switch n.kind {
	case KindConcat, KindAlt, KindRepeat:
		return n.sub
	default:
		return nil
	}
}

// Repeat returns the bounds and greediness of a KindRepeat node.
// Returns (nil, 0, 0, false) for any other kind.
func (n *Node) Repeat() (body *Node, min, max int, greedy bool) {
	if n.kind != KindRepeat {
		return nil, 0, 0, false
	}
	return n.sub[0], n.min, n.max, n.greedy
}

// Empty returns a new Empty node.
func Empty() *Node {
	return &Node{kind: KindEmpty}
}

// ByteRange returns a node matching a single byte in [lo, hi].
// Panics if lo > hi.
func ByteRange(lo, hi byte) *Node {
	if lo > hi {
		panic("mir: ByteRange: lo > hi")
	}
	return &Node{kind: KindByteRange, lo: lo, hi: hi}
}

// Byte returns a node matching exactly one byte value.
func Byte(b byte) *Node {
	return ByteRange(b, b)
}

// Concat returns a node matching each of subs in sequence.
// Flattens nested Concat children and elides Empty children so the
// resulting tree stays in canonical form. Returns Empty() for zero subs.
func Concat(subs ...*Node) *Node {
	flat := make([]*Node, 0, len(subs))
	for _, s := range subs {
		if s.kind == KindEmpty {
			continue
		}
		if s.kind == KindConcat {
			flat = append(flat, s.sub...)
			continue
		}
		flat = append(flat, s)
	}
	switch len(flat) {
	case 0:
		return Empty()
	case 1:
		return flat[0]
	default:
		return &Node{kind: KindConcat, sub: flat}
	}
}

// Alt returns a node matching any one of subs, with structurally
// duplicate children removed and nested Alt children flattened.
// Returns Empty() for zero subs; returns the single child unwrapped
// when only one distinct alternative remains.
func Alt(subs ...*Node) *Node {
	flat := make([]*Node, 0, len(subs))
	for _, s := range subs {
		if s.kind == KindAlt {
			flat = append(flat, s.sub...)
			continue
		}
		flat = append(flat, s)
	}

	seen := make(map[string]bool, len(flat))
	deduped := flat[:0:0]
	for _, s := range flat {
		fp := Fingerprint(s)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		deduped = append(deduped, s)
	}

	switch len(deduped) {
	case 0:
		return Empty()
	case 1:
		return deduped[0]
	default:
		return &Node{kind: KindAlt, sub: deduped}
	}
}

// Repeat returns a node matching body between min and max times
// (max == Unbounded for no upper bound). Panics if min < 0, or if
// max != Unbounded and max < min.
func Repeat(body *Node, min, max int, greedy bool) *Node {
	if min < 0 {
		panic("mir: Repeat: min < 0")
	}
	if max != Unbounded && max < min {
		panic("mir: Repeat: max < min")
	}
	if min == 1 && max == 1 {
		return body
	}
	return &Node{kind: KindRepeat, sub: []*Node{body}, min: min, max: max, greedy: greedy}
}

// Class returns a node matching any byte in one of the given inclusive
// ranges. Ranges are canonicalized (sorted and merged where adjacent or
// overlapping) before being combined into an alternation, satisfying the
// MIR invariant that byte ranges are always canonical.
func Class(ranges [][2]byte) *Node {
	merged := canonicalizeRanges(ranges)
	if len(merged) == 0 {
		return nil
	}
	nodes := make([]*Node, len(merged))
	for i, r := range merged {
		nodes[i] = ByteRange(r[0], r[1])
	}
	return Alt(nodes...)
}

// canonicalizeRanges sorts ranges by lower bound and merges any that are
// adjacent or overlapping, satisfying the "ranges are canonicalized
// (sorted, disjoint)" MIR invariant.
func canonicalizeRanges(ranges [][2]byte) [][2]byte {
	if len(ranges) == 0 {
		return nil
	}
	cp := make([][2]byte, len(ranges))
	copy(cp, ranges)
	sort.Slice(cp, func(i, j int) bool { return cp[i][0] < cp[j][0] })

	out := cp[:1]
	for _, r := range cp[1:] {
		last := &out[len(out)-1]
		if int(r[0]) <= int(last[1])+1 {
			if r[1] > last[1] {
				last[1] = r[1]
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Nullable reports whether n can match the empty string. The top-level
// node of a lowered pattern must not be Nullable — empty-match patterns
// are rejected at lowering time (§4.1 invariant (i)).
func (n *Node) Nullable() bool {
	switch n.kind {
	case KindEmpty:
		return true
	case KindByteRange:
		return false
	case KindConcat:
		for _, s := range n.sub {
			if !s.Nullable() {
				return false
			}
		}
		return true
	case KindAlt:
		for _, s := range n.sub {
			if s.Nullable() {
				return true
			}
		}
		return false
	case KindRepeat:
		return n.min == 0 || n.sub[0].Nullable()
	default:
		return false
	}
}

// MatchesFullByteRange reports whether n is equivalent to a single byte
// transition covering the entire byte alphabet [0x00, 0xFF]. The
// greedy-dot guard (§4.4) does not use it; it tests IsAnyClass.
func (n *Node) MatchesFullByteRange() bool {
	switch n.kind {
	case KindByteRange:
		return n.lo == 0x00 && n.hi == 0xFF
	case KindAlt:
		ranges := make([][2]byte, 0, len(n.sub))
		for _, s := range n.sub {
			if s.kind != KindByteRange {
				return false
			}
			ranges = append(ranges, [2]byte{s.lo, s.hi})
		}
		merged := canonicalizeRanges(ranges)
		return len(merged) == 1 && merged[0][0] == 0x00 && merged[0][1] == 0xFF
	default:
		return false
	}
}

// Fingerprint returns a canonical string encoding of n's structure,
// suitable as a map key for structural de-duplication (used by Alt) and
// as the basis for the graph package's content-addressed state hashing.
func Fingerprint(n *Node) string {
	var b strings.Builder
	writeFingerprint(&b, n)
	return b.String()
}

func writeFingerprint(b *strings.Builder, n *Node) {
	switch n.kind {
	case KindEmpty:
		b.WriteString("E")
	case KindByteRange:
		fmt.Fprintf(b, "B(%02x,%02x)", n.lo, n.hi)
	case KindConcat:
		b.WriteString("C(")
		for _, s := range n.sub {
			writeFingerprint(b, s)
			b.WriteByte(',')
		}
		b.WriteString(")")
	case KindAlt:
		b.WriteString("A(")
		for _, s := range n.sub {
			writeFingerprint(b, s)
			b.WriteByte(',')
		}
		b.WriteString(")")
	case KindRepeat:
		fmt.Fprintf(b, "R(%d,%d,%t,", n.min, n.max, n.greedy)
		writeFingerprint(b, n.sub[0])
		b.WriteString(")")
	}
}
