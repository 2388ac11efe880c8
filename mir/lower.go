package mir

import (
	"fmt"
	"regexp/syntax"
	"unicode"
	"unicode/utf8"
)

// Options controls how Lower interprets a pattern's syntax.
type Options struct {
	// IgnoreCase forces case-insensitive matching even when the pattern
	// text carries no inline (?i) flag.
	IgnoreCase bool

	// Unicode enables full Unicode case folding for ignore-case literals
	// and classes. When false, case folding is restricted to ASCII
	// letters, matching the teacher's isASCIILetter-gated fold path.
	Unicode bool

	// RawBytes declares that the token's alphabet is raw bytes rather
	// than UTF-8 text, permitting `.` and byte classes to cover the full
	// 0x00-0xFF range including sequences that are not valid UTF-8.
	RawBytes bool

	// Subpatterns supplies named subpattern definitions referenced from
	// pattern text as (?&name).
	Subpatterns map[string]string
}

// Lower parses pattern as a standard regular expression and lowers it into
// a normalized MIR tree. name identifies the pattern in error messages; it
// may be empty.
//
// Invariant (iii) of §4.1 — that byte ranges never encode invalid UTF-8
// unless RawBytes is set — holds by construction: every node not built
// under Options.RawBytes is derived from rune ranges via RuneRange, which
// always emits valid UTF-8 byte sequences. Only the RawBytes `.` path (see
// lowerAnyChar) can introduce bytes outside valid UTF-8, and it does so
// only when the caller has opted in.
func Lower(name, pattern string, opts Options) (*Node, error) {
	wrap := func(err error) error {
		return &LowerError{PatternName: name, Pattern: pattern, Err: err}
	}

	expanded, err := ExpandSubpatterns(pattern, opts.Subpatterns)
	if err != nil {
		return nil, wrap(err)
	}

	flags := syntax.Perl
	if opts.IgnoreCase {
		flags |= syntax.FoldCase
	}

	re, err := syntax.Parse(expanded, flags)
	if err != nil {
		return nil, wrap(fmt.Errorf("%w: %v", ErrSyntax, err))
	}
	re = re.Simplify()

	re = stripRedundantAnchor(re)

	node, err := lowerNode(re, opts)
	if err != nil {
		return nil, wrap(err)
	}

	if node.Nullable() {
		return nil, wrap(ErrEmptyMatch)
	}

	return node, nil
}

// stripRedundantAnchor removes a single leading ^/\A from the top of the
// tree: every pattern is already implicitly anchored at the start of
// input (§4.1), so an explicit leading anchor is redundant rather than
// meaningful. An anchor appearing anywhere else in the tree is left for
// lowerNode to reject, since MIR has no assertion node to express it.
func stripRedundantAnchor(re *syntax.Regexp) *syntax.Regexp {
	if re.Op == syntax.OpBeginText {
		return &syntax.Regexp{Op: syntax.OpEmptyMatch}
	}
	if re.Op == syntax.OpConcat && len(re.Sub) > 0 && re.Sub[0].Op == syntax.OpBeginText {
		rest := re.Sub[1:]
		if len(rest) == 0 {
			return &syntax.Regexp{Op: syntax.OpEmptyMatch}
		}
		cp := *re
		cp.Sub = rest
		return &cp
	}
	return re
}

func lowerNode(re *syntax.Regexp, opts Options) (*Node, error) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return Empty(), nil

	case syntax.OpLiteral:
		return lowerLiteral(re, opts)

	case syntax.OpCharClass:
		return lowerCharClass(re.Rune)

	case syntax.OpAnyChar:
		return lowerAnyChar(opts, true), nil

	case syntax.OpAnyCharNotNL:
		return lowerAnyChar(opts, false), nil

	case syntax.OpCapture:
		// Capturing groups are silently demoted to non-capturing (§4.1).
		return lowerNode(re.Sub[0], opts)

	case syntax.OpConcat:
		subs, err := lowerAll(re.Sub, opts)
		if err != nil {
			return nil, err
		}
		return Concat(subs...), nil

	case syntax.OpAlternate:
		subs, err := lowerAll(re.Sub, opts)
		if err != nil {
			return nil, err
		}
		return Alt(subs...), nil

	case syntax.OpStar:
		return lowerRepeat(re, 0, Unbounded, opts)

	case syntax.OpPlus:
		return lowerRepeat(re, 1, Unbounded, opts)

	case syntax.OpQuest:
		return lowerRepeat(re, 0, 1, opts)

	case syntax.OpRepeat:
		max := re.Max
		if max < 0 {
			max = Unbounded
		}
		return lowerRepeat(re, re.Min, max, opts)

	case syntax.OpNoMatch:
		return nil, fmt.Errorf("%w: pattern can never match", ErrUnsupportedConstruct)

	case syntax.OpBeginText, syntax.OpEndText, syntax.OpBeginLine, syntax.OpEndLine:
		return nil, fmt.Errorf("%w: anchor %v (only a single leading ^ or \\A is supported, as a no-op)", ErrUnsupportedConstruct, re.Op)

	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return nil, fmt.Errorf("%w: word boundary %v", ErrUnsupportedConstruct, re.Op)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedConstruct, re.Op)
	}
}

func lowerAll(res []*syntax.Regexp, opts Options) ([]*Node, error) {
	out := make([]*Node, len(res))
	for i, s := range res {
		n, err := lowerNode(s, opts)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func lowerRepeat(re *syntax.Regexp, min, max int, opts Options) (*Node, error) {
	if re.Flags&syntax.NonGreedy != 0 {
		return nil, fmt.Errorf("%w: %v", ErrNonGreedy, re.Op)
	}
	body, err := lowerNode(re.Sub[0], opts)
	if err != nil {
		return nil, err
	}
	return Repeat(body, min, max, true), nil
}

func lowerLiteral(re *syntax.Regexp, opts Options) (*Node, error) {
	if len(re.Rune) == 0 {
		return Empty(), nil
	}
	fold := opts.IgnoreCase || re.Flags&syntax.FoldCase != 0
	parts := make([]*Node, len(re.Rune))
	for i, r := range re.Rune {
		if fold {
			parts[i] = foldRune(r, opts.Unicode)
		} else {
			parts[i] = RuneRange(r, r)
		}
	}
	return Concat(parts...), nil
}

// foldRune returns a node matching every case variant of r. Restricted to
// the ASCII case orbit unless unicodeMode requests full Unicode folding,
// mirroring the teacher's isASCIILetter-gated literal fold path.
func foldRune(r rune, unicodeMode bool) *Node {
	if !unicodeMode && r >= utf8.RuneSelf {
		return RuneRange(r, r)
	}

	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if !unicodeMode && f >= utf8.RuneSelf {
			continue
		}
		orbit = append(orbit, f)
	}

	nodes := make([]*Node, len(orbit))
	for i, o := range orbit {
		nodes[i] = RuneRange(o, o)
	}
	return Alt(nodes...)
}

func lowerCharClass(ranges []rune) (*Node, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: empty character class matches nothing", ErrUnsupportedConstruct)
	}
	alts := make([]*Node, 0, len(ranges)/2)
	for i := 0; i+1 < len(ranges); i += 2 {
		if n := RuneRange(ranges[i], ranges[i+1]); n != nil {
			alts = append(alts, n)
		}
	}
	if len(alts) == 0 {
		return nil, fmt.Errorf("%w: character class excludes all valid scalar values", ErrUnsupportedConstruct)
	}
	return Alt(alts...), nil
}

// lowerAnyChar lowers `.`  (includeNL selects (?s:.) vs the default).
// Under RawBytes it covers the full byte alphabet; otherwise it covers
// every valid Unicode scalar value, built through the UTF-8 byte
// automaton constructor.
func lowerAnyChar(opts Options, includeNL bool) *Node {
	var n *Node
	switch {
	case opts.RawBytes && includeNL:
		n = ByteRange(0x00, 0xFF)
	case opts.RawBytes:
		n = Alt(ByteRange(0x00, 0x09), ByteRange(0x0B, 0xFF))
	case includeNL:
		n = RuneRange(0, utf8.MaxRune)
	default:
		n = Alt(RuneRange(0, 0x09), RuneRange(0x0B, utf8.MaxRune))
	}
	n.isAny = true
	return n
}
