package graph

import (
	"github.com/lexgraph/lexgraph/leaf"
	"github.com/lexgraph/lexgraph/mir"
)

// literalBytes reports whether n is a pure literal byte sequence — a
// single-byte ByteRange, or a Concat of nothing but single-byte
// ByteRanges — with no regex metacharacter (class, alternation, or
// repetition) anywhere in it. Lowering already rejects empty-match
// patterns, so a literal is always at least one byte.
func literalBytes(n *mir.Node) ([]byte, bool) {
	switch n.Kind() {
	case mir.KindByteRange:
		lo, hi := n.ByteRange()
		if lo != hi {
			return nil, false
		}
		return []byte{lo}, true
	case mir.KindConcat:
		children := n.Children()
		out := make([]byte, 0, len(children))
		for _, c := range children {
			if c.Kind() != mir.KindByteRange {
				return nil, false
			}
			lo, hi := c.ByteRange()
			if lo != hi {
				return nil, false
			}
			out = append(out, lo)
		}
		return out, true
	default:
		return nil, false
	}
}

// trieNode is one node of the literal prefix trie: entering it means
// "these bytes have been consumed so far". A node may both accept (end a
// literal) and continue (be a prefix of a longer one), exactly like a
// Fork state that is simultaneously accepting and forking further.
type trieNode struct {
	children [256]*trieNode
	// accepts holds one entry per leaf whose literal ends exactly here.
	// Usually at most one; two entries means two leaves share the exact
	// same literal text, which resolveAccept must still be able to catch
	// as a priority collision rather than have the second insert silently
	// overwrite the first.
	accepts []Accept
}

func (t *trieNode) childFor(b byte) *trieNode {
	if t.children[b] == nil {
		t.children[b] = &trieNode{}
	}
	return t.children[b]
}

// insertLiteral inserts bytes into the trie, recording id/priority as one
// of the (usually one) leaves accepted when all of bytes has been
// consumed.
func (t *trieNode) insertLiteral(bytes []byte, id leaf.ID, priority int) {
	cur := t
	for _, b := range bytes {
		cur = cur.childFor(b)
	}
	cur.accepts = append(cur.accepts, Accept{LeafID: id, Priority: priority})
}

// compileTrieNode lowers a trie node into fragment states: one Match
// state per leaf the node accepts, one ByteRange state per child, all merged
// under a single Split chain — the same buildSplitChain used for
// alternation — so that from the caller's point of view a trie node is
// just another fragment entry point.
//
// This is the literal fast path's entire benefit: a keyword set with a
// shared prefix produces exactly one ByteRange state per prefix byte here,
// instead of one per literal that happens to share that prefix — subset
// construction would eventually discover the same sharing on its own, but
// only after scanning every duplicate through epsilon-closure and move at
// every step along the shared prefix.
func compileTrieNode(b *fragBuilder, node *trieNode) fragStateID {
	var targets []fragStateID
	for _, a := range node.accepts {
		targets = append(targets, b.addMatch(a.LeafID, a.Priority))
	}
	for c := 0; c < 256; c++ {
		child := node.children[c]
		if child == nil {
			continue
		}
		childStart := compileTrieNode(b, child)
		targets = append(targets, b.addByteRange(byte(c), byte(c), childStart))
	}
	if len(targets) == 0 {
		// Unreachable: an inserted literal always ends in an accepting
		// node, so every trie node reachable from the root either
		// accepts or has at least one child.
		return b.addEpsilon(fragInvalid)
	}
	return buildSplitChain(b, targets)
}
