package ecs

// SparseSet is a cache-friendly storage for one component kind keyed by
// entity slot. Values are stored as `any` holding a *T; the generic helpers
// in generics.go do the casting. Each slot also remembers the world tick at
// which its value was last written, which drives change detection.
type SparseSet struct {
	dense  []Entity
	values []any
	ticks  []uint32
	sparse []int
}

func (s *SparseSet) index(id entityID) int {
	if s == nil || id == 0 || int(id) > len(s.sparse) {
		return -1
	}
	idx := s.sparse[id-1]
	if idx < 0 || idx >= len(s.dense) || s.dense[idx].id() != id {
		return -1
	}
	return idx
}

// Has returns true if the entity slot exists in the set.
func (s *SparseSet) Has(e Entity) bool {
	idx := s.index(e.id())
	return idx >= 0 && s.dense[idx] == e
}

// Get returns the component for e, or nil.
func (s *SparseSet) Get(e Entity) any {
	idx := s.index(e.id())
	if idx < 0 || s.dense[idx] != e {
		return nil
	}
	return s.values[idx]
}

// Tick returns the tick at which e's value was last written.
func (s *SparseSet) Tick(e Entity) (uint32, bool) {
	idx := s.index(e.id())
	if idx < 0 || s.dense[idx] != e {
		return 0, false
	}
	return s.ticks[idx], true
}

// Touch bumps e's change tick without replacing the value.
func (s *SparseSet) Touch(e Entity, tick uint32) {
	idx := s.index(e.id())
	if idx < 0 || s.dense[idx] != e {
		return
	}
	s.ticks[idx] = tick
}

// Set inserts or updates a component for e. When a previous value is
// replaced it is returned so the caller can release it.
func (s *SparseSet) Set(e Entity, v any, tick uint32) (old any, replaced bool) {
	if s == nil || !e.Valid() {
		return nil, false
	}
	id := e.id()
	for int(id) > len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx := s.index(id); idx >= 0 {
		old = s.values[idx]
		s.dense[idx] = e
		s.values[idx] = v
		s.ticks[idx] = tick
		return old, true
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.ticks = append(s.ticks, tick)
	s.sparse[id-1] = len(s.dense) - 1
	return nil, false
}

// Remove deletes the component for e if present and returns it.
func (s *SparseSet) Remove(e Entity) (any, bool) {
	idx := s.index(e.id())
	if idx < 0 || s.dense[idx] != e {
		return nil, false
	}
	removed := s.values[idx]
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[idx] = s.dense[last]
	s.values[idx] = s.values[last]
	s.ticks[idx] = s.ticks[last]
	s.sparse[moved.id()-1] = idx

	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.ticks = s.ticks[:last]
	s.sparse[e.id()-1] = -1
	return removed, true
}

// Entities returns the dense entity list. Callers must not keep it across
// writes to the set.
func (s *SparseSet) Entities() []Entity {
	if s == nil {
		return nil
	}
	return s.dense
}

// Values returns the dense component list.
func (s *SparseSet) Values() []any {
	if s == nil {
		return nil
	}
	return s.values
}

// Len reports the number of stored components.
func (s *SparseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}
