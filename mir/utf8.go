package mir

import "unicode/utf8"

// utf8LengthBounds are the four encoded-length boundaries of Unicode scalar
// values (1, 2, 3, and 4-byte UTF-8 sequences).
var utf8LengthBounds = [4][2]rune{
	{0x0000, 0x007F},
	{0x0080, 0x07FF},
	{0x0800, 0xFFFF},
	{0x10000, 0x10FFFF},
}

// RuneRange returns a MIR node matching the UTF-8 encoding of every rune in
// [lo, hi], generalizing the teacher's per-length compileUTF8{1,2,3,4}ByteRange
// functions into a single recursive byte-range splitter: the range is first
// split at UTF-8 encoded-length boundaries and the surrogate gap, then each
// same-length sub-range is split byte-by-byte so that every alternative is a
// Concat of exact byte ranges.
func RuneRange(lo, hi rune) *Node {
	if lo > hi {
		return nil
	}
	var alts []*Node
	for _, bound := range utf8LengthBounds {
		l, h := lo, hi
		if l < bound[0] {
			l = bound[0]
		}
		if h > bound[1] {
			h = bound[1]
		}
		if l > h {
			continue
		}
		alts = append(alts, splitSurrogateGap(l, h)...)
	}
	return Alt(alts...)
}

// splitSurrogateGap removes the UTF-16 surrogate range U+D800-U+DFFF, which
// is never valid UTF-8, splitting into up to two sub-ranges when [lo, hi]
// straddles it.
func splitSurrogateGap(lo, hi rune) []*Node {
	const surrogateLo, surrogateHi = 0xD800, 0xDFFF
	switch {
	case lo > surrogateHi || hi < surrogateLo:
		return []*Node{encodeRuneRange(lo, hi)}
	case lo >= surrogateLo && hi <= surrogateHi:
		return nil
	case lo < surrogateLo && hi > surrogateHi:
		return []*Node{encodeRuneRange(lo, surrogateLo-1), encodeRuneRange(surrogateHi+1, hi)}
	case lo < surrogateLo:
		return []*Node{encodeRuneRange(lo, surrogateLo-1)}
	default:
		return []*Node{encodeRuneRange(surrogateHi+1, hi)}
	}
}

// encodeRuneRange encodes lo and hi as same-length UTF-8 byte sequences and
// splits the byte-value range between them.
func encodeRuneRange(lo, hi rune) *Node {
	var loBuf, hiBuf [utf8.UTFMax]byte
	n := utf8.EncodeRune(loBuf[:], lo)
	utf8.EncodeRune(hiBuf[:], hi)
	return splitByteRange(loBuf[:n], hiBuf[:n])
}

// splitByteRange builds a MIR node matching every byte sequence of length
// len(loB) that lexicographically falls in [loB, hiB], where each byte
// position's own value range is further constrained to continuation-byte
// form (0x80-0xBF) for all but the first position. This is the classic
// byte-range-splitting construction used by UTF-8-aware automaton builders.
func splitByteRange(loB, hiB []byte) *Node {
	if len(loB) == 1 {
		return ByteRange(loB[0], hiB[0])
	}
	// prefixed distributes first over rest's alternatives so that every
	// alternative stays a flat Concat of byte ranges.
	prefixed := func(first, rest *Node) *Node {
		if rest.Kind() != KindAlt {
			return Concat(first, rest)
		}
		alts := make([]*Node, len(rest.sub))
		for i, s := range rest.sub {
			alts[i] = Concat(first, s)
		}
		return Alt(alts...)
	}
	if loB[0] == hiB[0] {
		return prefixed(Byte(loB[0]), splitByteRange(loB[1:], hiB[1:]))
	}

	minRest := make([]byte, len(loB)-1)
	maxRest := make([]byte, len(loB)-1)
	for i := range minRest {
		minRest[i] = 0x80
		maxRest[i] = 0xBF
	}

	var alts []*Node
	alts = append(alts, prefixed(Byte(loB[0]), splitByteRange(loB[1:], maxRest)))
	if hiB[0] > loB[0]+1 {
		alts = append(alts, Concat(ByteRange(loB[0]+1, hiB[0]-1), fullContinuationRange(minRest, maxRest)))
	}
	alts = append(alts, prefixed(Byte(hiB[0]), splitByteRange(minRest, hiB[1:])))
	return Alt(alts...)
}

// fullContinuationRange builds a Concat matching any continuation-byte
// sequence of the given length, one ByteRange per position.
func fullContinuationRange(minRest, maxRest []byte) *Node {
	parts := make([]*Node, len(minRest))
	for i := range minRest {
		parts[i] = ByteRange(minRest[i], maxRest[i])
	}
	return Concat(parts...)
}
