package codegen

import (
	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/optimize"
)

// emitTailCall generates the BackendTailCall shape: one function per
// reachable graph state, each taking the position reached so far and the
// accept stack accumulated so far, and tail-calling the next state's
// function on every transition instead of looping through a shared
// dispatch variable. Recursion depth tracks match length rather than
// input length (each call consumes at least the bytes of its state's own
// Rope run, if any), which the teacher's own recursive-descent NFA walks
// rely on for the same reason.
func (b *builder) emitTailCall(plan *optimize.Plan) {
	b.emitHeader()
	b.emitScanWrapper()
	b.emitDispatchFunc(b.sortedLeafIDs())

	g := plan.Graph
	ids := reachableStateIDs(g)

	b.writef("func %sscanOnce(src []byte, start int) []%saccept {\n", lower(b.opts.TypeName), b.opts.TypeName)
	b.writef("\treturn %s(src, start, start, nil)\n", b.stateFunc(g.Root))
	b.writef("}\n\n")

	for _, id := range ids {
		s := g.State(id)
		b.writef("func %s(src []byte, start, pos int, stack []%saccept) []%saccept {\n",
			b.stateFunc(id), b.opts.TypeName, b.opts.TypeName)
		b.emitTailCallState(s, plan.Dispatch[id])
		b.writef("}\n\n")
	}
}

// emitTailCallState writes the body of one state's function: it appends
// to the accept stack where applicable and either returns it (no further
// transition possible) or tail-calls the next state's function.
func (b *builder) emitTailCallState(s *graph.State, mode optimize.DispatchMode) {
	switch s.Kind() {
	case graph.KindLeaf:
		a := s.LeafAccept()
		b.writef("\treturn append(stack, %saccept{pos: pos, leaf: %d})\n", b.opts.TypeName, a.LeafID)

	case graph.KindRope:
		bytes := s.Bytes()
		b.writef("\tif pos+%d <= len(src) && string(src[pos:pos+%d]) == %s {\n", len(bytes), len(bytes), byteLiteral(bytes))
		b.writef("\t\treturn %s(src, start, pos+%d, stack)\n", b.stateFunc(s.RopeNext()), len(bytes))
		b.writef("\t}\n")
		b.writef("\treturn stack\n")

	case graph.KindFork:
		if a, has := s.Accept(); has {
			b.writef("\tstack = append(stack, %saccept{pos: pos, leaf: %d})\n", b.opts.TypeName, a.LeafID)
			if s.Early() {
				b.writef("\treturn stack\n")
				return
			}
		}
		b.writef("\tif pos >= len(src) {\n\t\treturn stack\n\t}\n")
		b.emitForkTailDispatch(s, mode)
		b.writef("\treturn stack\n")
	}
}

// emitForkTailDispatch mirrors emitForkDispatch, but each matched range
// tail-calls the next state's function instead of mutating a loop
// variable.
func (b *builder) emitForkTailDispatch(s *graph.State, mode optimize.DispatchMode) {
	trs := s.Transitions()
	if mode == optimize.DispatchTable {
		b.writef("\tswitch src[pos] {\n")
		for _, t := range trs {
			if t.Lo == t.Hi {
				b.writef("\tcase %d:\n", t.Lo)
			} else {
				b.writef("\tcase ")
				for c := int(t.Lo); c <= int(t.Hi); c++ {
					if c > int(t.Lo) {
						b.writef(", ")
					}
					b.writef("%d", c)
				}
				b.writef(":\n")
			}
			b.writef("\t\treturn %s(src, start, pos+1, stack)\n", b.stateFunc(t.Next))
		}
		b.writef("\t}\n")
		return
	}

	for _, t := range trs {
		b.writef("\tif c := src[pos]; %s {\n", rangeCond("c", t.Lo, t.Hi))
		b.writef("\t\treturn %s(src, start, pos+1, stack)\n", b.stateFunc(t.Next))
		b.writef("\t}\n")
	}
}
