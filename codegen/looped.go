package codegen

import (
	"sort"

	"github.com/lexgraph/lexgraph/graph"
	"github.com/lexgraph/lexgraph/optimize"
)

// emitDispatchLoop generates the BackendDispatchLoop shape: one function,
// `<Prefix>scanOnce`, holding a state-id variable driven by a for/switch
// loop, one case per reachable graph state. Each Fork case either
// advances pos and jumps to the next state, or — once no further
// transition is possible — falls out of the loop, returning the stack of
// every accept seen along the way for the shared dispatch function to
// pick from.
func (b *builder) emitDispatchLoop(plan *optimize.Plan) {
	b.emitHeader()
	b.emitScanWrapper()
	b.emitDispatchFunc(b.sortedLeafIDs())

	g := plan.Graph
	ids := reachableStateIDs(g)

	b.writef("func %sscanOnce(src []byte, start int) []%saccept {\n", lower(b.opts.TypeName), b.opts.TypeName)
	b.writef("\tpos := start\n")
	b.writef("\tvar stack []%saccept\n", b.opts.TypeName)
	b.writef("\tstate := %d\n", g.Root)
	b.writef("loop:\n")
	b.writef("\tfor {\n")
	b.writef("\t\tswitch state {\n")
	for _, id := range ids {
		s := g.State(id)
		b.writef("\t\tcase %d:\n", id)
		b.emitLoopState(s, plan.Dispatch[id])
	}
	b.writef("\t\t}\n")
	b.writef("\t}\n")
	b.writef("\treturn stack\n")
	b.writef("}\n\n")
}

// reachableStateIDs returns every non-nil state id in g, sorted, so the
// generated switch's case order is deterministic across runs.
func reachableStateIDs(g *graph.Graph) []graph.ID {
	var ids []graph.ID
	for _, s := range g.States() {
		if s != nil {
			ids = append(ids, s.ID())
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// emitLoopState writes one case body of scanOnce's state switch.
func (b *builder) emitLoopState(s *graph.State, mode optimize.DispatchMode) {
	switch s.Kind() {
	case graph.KindLeaf:
		a := s.LeafAccept()
		b.writef("\t\t\tstack = append(stack, %saccept{pos: pos, leaf: %d})\n", b.opts.TypeName, a.LeafID)
		b.writef("\t\t\tbreak loop\n")

	case graph.KindRope:
		bytes := s.Bytes()
		b.writef("\t\t\tif pos+%d <= len(src) && string(src[pos:pos+%d]) == %s {\n", len(bytes), len(bytes), byteLiteral(bytes))
		b.writef("\t\t\t\tpos += %d\n", len(bytes))
		b.writef("\t\t\t\tstate = %d\n", s.RopeNext())
		b.writef("\t\t\t\tcontinue\n")
		b.writef("\t\t\t}\n")
		b.writef("\t\t\tbreak loop\n")

	case graph.KindFork:
		if a, has := s.Accept(); has {
			b.writef("\t\t\tstack = append(stack, %saccept{pos: pos, leaf: %d})\n", b.opts.TypeName, a.LeafID)
			if s.Early() {
				b.writef("\t\t\tbreak loop\n")
				return
			}
		}
		b.writef("\t\t\tif pos >= len(src) {\n\t\t\t\tbreak loop\n\t\t\t}\n")
		b.emitForkDispatch(s, mode)
		b.writef("\t\t\tbreak loop\n")
	}
}

// emitForkDispatch writes the byte-dispatch body of a Fork case: either a
// switch statement on the byte (DispatchTable; no lookup table is emitted)
// or a chain of range comparisons, per mode
// (§4.4's density heuristic). Both forms fall through to `break loop`
// when the current byte has no transition.
func (b *builder) emitForkDispatch(s *graph.State, mode optimize.DispatchMode) {
	trs := s.Transitions()
	if mode == optimize.DispatchTable {
		b.writef("\t\t\tswitch src[pos] {\n")
		for _, t := range trs {
			if t.Lo == t.Hi {
				b.writef("\t\t\tcase %d:\n", t.Lo)
			} else {
				b.writef("\t\t\tcase ")
				for c := int(t.Lo); c <= int(t.Hi); c++ {
					if c > int(t.Lo) {
						b.writef(", ")
					}
					b.writef("%d", c)
				}
				b.writef(":\n")
			}
			b.writef("\t\t\t\tpos++\n\t\t\t\tstate = %d\n\t\t\t\tcontinue\n", t.Next)
		}
		b.writef("\t\t\t}\n")
		return
	}

	for _, t := range trs {
		b.writef("\t\t\tif c := src[pos]; %s {\n", rangeCond("c", t.Lo, t.Hi))
		b.writef("\t\t\t\tpos++\n\t\t\t\tstate = %d\n\t\t\t\tcontinue\n", t.Next)
		b.writef("\t\t\t}\n")
	}
}
