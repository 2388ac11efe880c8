package leaf

import "github.com/lexgraph/lexgraph/mir"

// Request is one pattern descriptor's worth of input to Build: its lowered
// MIR plus everything else needed to fill in a Leaf record.
type Request struct {
	ID ID

	// MIR is the already-lowered pattern. Required.
	MIR *mir.Node

	// ExplicitPriority overrides the structurally derived priority when
	// non-nil (§4.2).
	ExplicitPriority *int

	Shape CallbackShape
	Flags Flags
	Span  Span
}

// Build assigns a priority to each request — the structural derivation
// from DerivePriority, or the request's explicit override — and returns
// the resulting leaves in request order.
//
// Returns ErrDuplicateExplicitPriority, wrapped in a BuildError naming
// every affected leaf, when two or more requests supply the identical
// explicit override value: such an override cannot disambiguate a tie
// between those leaves, defeating the purpose of overriding it at all.
func Build(reqs []Request) ([]Leaf, error) {
	leaves := make([]Leaf, len(reqs))
	byOverride := make(map[int][]ID)

	for i, r := range reqs {
		priority := DerivePriority(r.MIR)
		flags := r.Flags
		if r.ExplicitPriority != nil {
			priority = *r.ExplicitPriority
			flags.ExplicitPriority = true
			byOverride[priority] = append(byOverride[priority], r.ID)
		}
		leaves[i] = New(r.ID, priority, r.Shape, flags, r.Span)
	}

	for priority, ids := range byOverride {
		if len(ids) > 1 {
			return nil, &BuildError{Priority: priority, LeafIDs: ids, Err: ErrDuplicateExplicitPriority}
		}
	}

	return leaves, nil
}
