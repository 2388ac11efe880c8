package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/leaf"
)

// stateFunc returns the generated identifier for a graph state, used both
// as a tail-call backend function name and as a dispatch-loop case label.
func (b *builder) stateFunc(id graph.ID) string {
	return fmt.Sprintf("%sState%d", b.opts.TypeName, id)
}

// tokenType, callbacksType and scanFunc name the three identifiers every
// backend's generated file exposes to its caller.
func (b *builder) tokenType() string     { return b.opts.TypeName + "Token" }
func (b *builder) callbacksType() string { return b.opts.TypeName + "Callbacks" }
func (b *builder) scanFunc() string      { return b.opts.TypeName + "Scan" }

// leafField names the Callbacks struct field for a leaf, derived from its
// pattern name so generated code reads naturally next to the descriptor
// list that produced it.
func (b *builder) leafField(id leaf.ID, info LeafInfo) string {
	name := info.Span.PatternName
	if name == "" {
		name = fmt.Sprintf("Leaf%d", id)
	}
	return b.opts.TypeName + name
}

// emitHeader writes the package clause, the shared Token/Callbacks types,
// and the no-match sentinel every backend relies on.
func (b *builder) emitHeader() {
	b.writef("// Code generated by lexgraph. DO NOT EDIT.\n\n")
	b.writef("package %s\n\n", b.opts.Package)
	b.writef("import \"fmt\"\n\n")

	b.writef("// %s reports one recognized token. Leaf is the id of the\n", b.tokenType())
	b.writef("// pattern that matched, or -1 if the scan reached end of input with\n")
	b.writef("// no pending token. Value carries a callback's returned value for\n")
	b.writef("// shapes that produce one; it is nil otherwise.\n")
	b.writef("type %s struct {\n", b.tokenType())
	b.writef("\tLeaf  int\n")
	b.writef("\tStart int\n")
	b.writef("\tEnd   int\n")
	b.writef("\tValue any\n")
	b.writef("}\n\n")

	b.emitCallbacksType()

	b.writef("// %sErrorSpan is returned when no pattern matches at the current\n", b.opts.TypeName)
	b.writef("// position; Start and End bound the unrecognized span, extended by\n")
	b.writef("// one byte past Start when the scan could not advance at all.\n")
	b.writef("type %sErrorSpan struct {\n", b.opts.TypeName)
	b.writef("\tStart, End int\n")
	b.writef("\tErr        error\n")
	b.writef("}\n\n")
	b.writef("func (e *%sErrorSpan) Error() string {\n", b.opts.TypeName)
	b.writef("\treturn fmt.Sprintf(\"no match at byte %%d: %%v\", e.Start, e.Err)\n")
	b.writef("}\n\n")
	b.writef("func (e *%sErrorSpan) Unwrap() error { return e.Err }\n\n", b.opts.TypeName)
	b.writef("var errNoMatch = fmt.Errorf(\"%s: no pattern matched\")\n\n", b.opts.TypeName)
}

// firstMissingLeaf reports the first leaf id (in state order) that g
// accepts but that has no corresponding entry in leaves, or (0, true) if
// every accepting leaf is covered.
func firstMissingLeaf(g *graph.Graph, leaves map[leaf.ID]LeafInfo) (leaf.ID, bool) {
	for _, s := range g.States() {
		if s == nil {
			continue
		}
		var id leaf.ID
		switch s.Kind() {
		case graph.KindLeaf:
			id = s.LeafAccept().LeafID
		case graph.KindFork:
			a, has := s.Accept()
			if !has {
				continue
			}
			id = a.LeafID
		default:
			continue
		}
		if _, ok := leaves[id]; !ok {
			return id, false
		}
	}
	return 0, true
}

// sortedLeafIDs returns every leaf id known to Options.Leaves, sorted, so
// every emission pass over them produces deterministic output.
func (b *builder) sortedLeafIDs() []leaf.ID {
	ids := make([]leaf.ID, 0, len(b.opts.Leaves))
	for id := range b.opts.Leaves {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// emitCallbacksType emits one nilable function field per leaf that carries
// an actual callback (every shape but None and Skip), sorted by leaf id
// for deterministic output.
func (b *builder) emitCallbacksType() {
	ids := b.sortedLeafIDs()

	b.writef("// %s holds the per-pattern callback function values invoked on\n", b.callbacksType())
	b.writef("// match. A nil field for a leaf that declares a callback shape means\n")
	b.writef("// that leaf always produces its zero value.\n")
	b.writef("type %s struct {\n", b.callbacksType())
	for _, id := range ids {
		info := b.opts.Leaves[id]
		sig := callbackSignature(info.Shape.Kind)
		if sig == "" {
			continue
		}
		b.writef("\t%s %s\n", b.leafField(id, info), sig)
	}
	b.writef("}\n\n")
}

// callbackSignature returns the Go function type invoked for a shape kind,
// or "" for shapes that carry no callback at all (None, Skip).
func callbackSignature(k leaf.ShapeKind) string {
	switch k {
	case leaf.ShapeUnit:
		return "func(text []byte)"
	case leaf.ShapeBool:
		return "func(text []byte) bool"
	case leaf.ShapeValue:
		return "func(text []byte) any"
	case leaf.ShapeOption:
		return "func(text []byte) (any, bool)"
	case leaf.ShapeResult:
		return "func(text []byte) (any, error)"
	case leaf.ShapeFilter:
		return "func(text []byte) bool"
	default:
		return ""
	}
}

// emitLeafDispatch writes one switch case of the shared dispatch
// function: given leaf id just accepted at [start:pos), invoke its
// callback per its declared shape and either yield a token, report a
// skip (the scan must restart from pos without yielding), report a
// callback error, or `continue` — Go's bare continue inside a switch
// resumes the enclosing for loop, which is exactly "try the next-best
// accept still on the stack" — for a semantic miss (ShapeBool/
// ShapeOption returning false/none).
func (b *builder) emitLeafDispatch(id leaf.ID, info LeafInfo) {
	field := b.leafField(id, info)
	shape := info.Shape

	if shape.IsSkip() {
		b.writef("\t\t\treturn %s{}, pos, true, nil\n", b.tokenType())
		return
	}

	switch shape.Kind {
	case leaf.ShapeNone:
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)

	case leaf.ShapeUnit:
		b.writef("\t\t\tif cb.%s != nil {\n\t\t\t\tcb.%s(src[start:pos])\n\t\t\t}\n", field, field)
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)

	case leaf.ShapeBool:
		b.writef("\t\t\tif cb.%s == nil || cb.%s(src[start:pos]) {\n", field, field)
		b.writef("\t\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)
		b.writef("\t\t\t}\n")
		b.writef("\t\t\tcontinue\n")

	case leaf.ShapeFilter:
		b.writef("\t\t\tif cb.%s != nil && !cb.%s(src[start:pos]) {\n", field, field)
		b.writef("\t\t\t\treturn %s{}, pos, true, nil\n", b.tokenType())
		b.writef("\t\t\t}\n")
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)

	case leaf.ShapeValue:
		b.writef("\t\t\tvar value any\n")
		b.writef("\t\t\tif cb.%s != nil {\n\t\t\t\tvalue = cb.%s(src[start:pos])\n\t\t\t}\n", field, field)
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos, Value: value}, pos, false, nil\n", b.tokenType(), id)

	case leaf.ShapeOption:
		b.writef("\t\t\tif cb.%s != nil {\n", field)
		b.writef("\t\t\t\tif v, ok := cb.%s(src[start:pos]); ok {\n", field)
		b.writef("\t\t\t\t\treturn %s{Leaf: %d, Start: start, End: pos, Value: v}, pos, false, nil\n", b.tokenType(), id)
		b.writef("\t\t\t\t}\n\t\t\t\tcontinue\n")
		b.writef("\t\t\t}\n")
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)

	case leaf.ShapeResult:
		b.writef("\t\t\tif cb.%s != nil {\n", field)
		b.writef("\t\t\t\tv, err := cb.%s(src[start:pos])\n", field)
		b.writef("\t\t\t\tif err != nil {\n")
		b.writef("\t\t\t\t\treturn %s{}, pos, false, &%sErrorSpan{Start: start, End: pos, Err: err}\n", b.tokenType(), b.opts.TypeName)
		b.writef("\t\t\t\t}\n")
		b.writef("\t\t\t\treturn %s{Leaf: %d, Start: start, End: pos, Value: v}, pos, false, nil\n", b.tokenType(), id)
		b.writef("\t\t\t}\n")
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)

	default:
		b.writef("\t\t\treturn %s{Leaf: %d, Start: start, End: pos}, pos, false, nil\n", b.tokenType(), id)
	}
}

// emitDispatchFunc writes the shared dispatch function both backends call
// once their scanOnce walk has produced a stack of candidate accepts
// ordered from least- to most-preferred (so popping the tail tries the
// longest match first, falling back to shorter ones only on a semantic
// miss). An empty final stack is the true no-match case: §4.5's "extend
// the error span by one unit" rule applies since start==pos was never
// advanced past by any accept.
func (b *builder) emitDispatchFunc(ids []leaf.ID) {
	b.writef("func %sdispatch(src []byte, start int, stack []%saccept, cb *%s) (%s, int, bool, error) {\n",
		lower(b.opts.TypeName), b.opts.TypeName, b.callbacksType(), b.tokenType())
	b.writef("\tfor len(stack) > 0 {\n")
	b.writef("\t\ttop := stack[len(stack)-1]\n")
	b.writef("\t\tstack = stack[:len(stack)-1]\n")
	b.writef("\t\tpos := top.pos\n")
	b.writef("\t\tswitch top.leaf {\n")
	for _, id := range ids {
		b.writef("\t\tcase %d:\n", id)
		b.emitLeafDispatch(id, b.opts.Leaves[id])
	}
	b.writef("\t\t}\n")
	b.writef("\t}\n")
	b.writef("\tend := start\n")
	b.writef("\tif end < len(src) {\n")
	b.writef("\t\tend++\n")
	b.writef("\t}\n")
	b.writef("\treturn %s{}, end, false, &%sErrorSpan{Start: start, End: end, Err: errNoMatch}\n", b.tokenType(), b.opts.TypeName)
	b.writef("}\n\n")
}

// lower lowercases a type prefix's first rune so the unexported dispatch
// helper doesn't collide with the exported Scan entry point.
func lower(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// emitScanWrapper writes the package's single exported entry point: it
// repeatedly calls the backend's scanOnce (building one maximal-munch
// attempt's accept stack) and the shared dispatch function, looping back
// to scan again from a new start whenever dispatch reports a skip.
func (b *builder) emitScanWrapper() {
	b.writef("// %s recognizes the next token in src starting at start.\n", b.scanFunc())
	b.writef("// It returns a zero Token with Leaf -1 when start has reached len(src).\n")
	b.writef("func %s(src []byte, start int, cb *%s) (%s, int, error) {\n", b.scanFunc(), b.callbacksType(), b.tokenType())
	b.writef("\tfor {\n")
	b.writef("\t\tif start >= len(src) {\n")
	b.writef("\t\t\treturn %s{Leaf: -1, Start: start, End: start}, start, nil\n", b.tokenType())
	b.writef("\t\t}\n")
	b.writef("\t\tstack := %sscanOnce(src, start)\n", lower(b.opts.TypeName))
	b.writef("\t\ttok, pos, skip, err := %sdispatch(src, start, stack, cb)\n", lower(b.opts.TypeName))
	b.writef("\t\tif err != nil {\n\t\t\treturn %s{}, pos, err\n\t\t}\n", b.tokenType())
	b.writef("\t\tif skip {\n\t\t\tstart = pos\n\t\t\tcontinue\n\t\t}\n")
	b.writef("\t\treturn tok, pos, nil\n")
	b.writef("\t}\n")
	b.writef("}\n\n")
	b.writef("type %saccept struct {\n\tpos  int\n\tleaf int\n}\n\n", b.opts.TypeName)
}

// rangeCond renders a Go boolean expression testing whether b is within
// [lo,hi], collapsing to a single equality when the range is one byte.
func rangeCond(varName string, lo, hi byte) string {
	if lo == hi {
		return fmt.Sprintf("%s == %d", varName, lo)
	}
	return fmt.Sprintf("%s >= %d && %s <= %d", varName, lo, varName, hi)
}

// byteLiteral renders a byte slice as a Go string literal for embedding a
// Rope's required byte run directly in generated source.
func byteLiteral(bs []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range bs {
		fmt.Fprintf(&sb, "\\x%02x", c)
	}
	sb.WriteByte('"')
	return sb.String()
}
