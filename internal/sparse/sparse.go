// Package sparse provides a sparse set data structure for efficient membership
// testing over small integer universes.
//
// A sparse set supports O(1) insertion, removal, and membership testing while
// maintaining a dense list for iteration in insertion order. The graph
// builder uses it to track the set of MIR fragment-states reachable while
// merging sub-graphs during subset construction (see graph's
// epsilonClosure).
package sparse

// SparseSet is a set of uint32 values that supports O(1) operations.
// It maintains both a sparse array (value -> dense index) and a dense array
// (the actual values, in insertion order).
//
// This implementation is optimized for cases where the universe of possible
// values is known and relatively small (e.g. fragment-state ids assigned
// during MIR lowering).
type SparseSet struct {
	sparse []uint32
	dense  []uint32
}

// defaultCapacity is used when NewSparseSet is called with capacity 0,
// since a zero-capacity set can never hold a value.
const defaultCapacity = 64

// NewSparseSet creates a new sparse set with the given capacity.
// The capacity is the exclusive upper bound on values that can be stored.
// A capacity of 0 is treated as defaultCapacity.
func NewSparseSet(capacity uint32) *SparseSet {
	if capacity == 0 {
		capacity = defaultCapacity
	}
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Capacity returns the exclusive upper bound on storable values.
func (s *SparseSet) Capacity() uint32 {
	return uint32(len(s.sparse))
}

// Len returns the number of elements currently in the set.
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// Size is an alias for Len, kept for call sites that read more naturally
// asking for a set's "size".
func (s *SparseSet) Size() int {
	return s.Len()
}

// MemoryUsage returns the approximate number of bytes backing this set.
func (s *SparseSet) MemoryUsage() int {
	return len(s.sparse)*4 + cap(s.dense)*4
}

// IsEmpty reports whether the set has no elements.
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Contains reports whether value is in the set.
func (s *SparseSet) Contains(value uint32) bool {
	if value >= uint32(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return idx < uint32(len(s.dense)) && s.dense[idx] == value
}

// Insert adds value to the set. Returns true if the value was newly
// inserted, false if it was already present.
// Panics if value >= Capacity().
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Remove deletes value from the set, if present.
func (s *SparseSet) Remove(value uint32) {
	if !s.Contains(value) {
		return
	}
	idx := s.sparse[value]
	last := len(s.dense) - 1
	lastValue := s.dense[last]
	s.dense[idx] = lastValue
	s.sparse[lastValue] = idx
	s.dense = s.dense[:last]
}

// Clear empties the set in O(1) time, keeping the backing arrays.
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Resize changes the set's capacity. Growing preserves existing elements;
// shrinking or resizing to the same capacity clears the set, since a
// smaller universe can't generally preserve pre-existing dense indices
// safely.
func (s *SparseSet) Resize(capacity uint32) {
	if capacity == 0 {
		capacity = defaultCapacity
	}
	if capacity > uint32(len(s.sparse)) {
		grown := make([]uint32, capacity)
		copy(grown, s.sparse)
		s.sparse = grown
		return
	}
	s.sparse = make([]uint32, capacity)
	s.Clear()
}

// Values returns the set's elements in insertion order. The returned slice
// is valid until the next mutating call.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}

// Iter calls f for each value in the set, in insertion order.
func (s *SparseSet) Iter(f func(uint32)) {
	for _, v := range s.dense {
		f(v)
	}
}

// Clone returns an independent copy of the set.
func (s *SparseSet) Clone() *SparseSet {
	clone := &SparseSet{
		sparse: make([]uint32, len(s.sparse)),
		dense:  make([]uint32, len(s.dense)),
	}
	copy(clone.sparse, s.sparse)
	copy(clone.dense, s.dense)
	return clone
}

// SparseSets holds a pair of sparse sets used for double-buffering during
// worklist-style fixpoint iteration: one for the current frontier, one for
// the frontier being assembled.
type SparseSets struct {
	Set1 *SparseSet
	Set2 *SparseSet
}

// NewSparseSets creates a pair of empty sparse sets sharing a capacity.
func NewSparseSets(capacity uint32) *SparseSets {
	return &SparseSets{
		Set1: NewSparseSet(capacity),
		Set2: NewSparseSet(capacity),
	}
}

// Swap exchanges Set1 and Set2, so the former "next" frontier becomes
// "current" without copying.
func (ss *SparseSets) Swap() {
	ss.Set1, ss.Set2 = ss.Set2, ss.Set1
}

// Resize resizes both sets to the given capacity.
func (ss *SparseSets) Resize(capacity uint32) {
	ss.Set1.Resize(capacity)
	ss.Set2.Resize(capacity)
}

// Clear empties both sets.
func (ss *SparseSets) Clear() {
	ss.Set1.Clear()
	ss.Set2.Clear()
}

// MemoryUsage returns the approximate number of bytes backing both sets.
func (ss *SparseSets) MemoryUsage() int {
	return ss.Set1.MemoryUsage() + ss.Set2.MemoryUsage()
}
