package leaf

import "github.com/lexgraph/lexgraph/mir"

// DerivePriority computes a leaf's structural priority from its MIR (§4.2):
//
//   - a ByteRange matching exactly one byte (lo == hi) — a single-byte
//     literal, however it was written — contributes 2;
//   - any other ByteRange (a multi-byte range, the atom a byte-range/class
//     transition lowers to) contributes 1;
//   - Concat sums its children's contributions;
//   - Alt contributes the minimum of its children's contributions, since
//     an alternation is only as specific as its least specific branch;
//   - Repeat contributes 0 when it may match zero times (min == 0, as with
//     `*` and `?`), since zero repetitions is always a possible match; when
//     it must match at least once (min >= 1, as with `+` and `{n,...}`) it
//     contributes its body's derived priority, since that specificity is
//     then guaranteed;
//   - Empty contributes 0.
func DerivePriority(n *mir.Node) int {
	switch n.Kind() {
	case mir.KindEmpty:
		return 0

	case mir.KindByteRange:
		lo, hi := n.ByteRange()
		if lo == hi {
			return 2
		}
		return 1

	case mir.KindConcat:
		sum := 0
		for _, c := range n.Children() {
			sum += DerivePriority(c)
		}
		return sum

	case mir.KindAlt:
		children := n.Children()
		if len(children) == 0 {
			return 0
		}
		min := DerivePriority(children[0])
		for _, c := range children[1:] {
			if p := DerivePriority(c); p < min {
				min = p
			}
		}
		return min

	case mir.KindRepeat:
		body, min, _, _ := n.Repeat()
		if min == 0 {
			return 0
		}
		return DerivePriority(body)

	default:
		return 0
	}
}
