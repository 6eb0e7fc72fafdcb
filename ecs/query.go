package ecs

// IntersectEntities returns entities present in both sets, in the dense
// order of the smaller one.
func IntersectEntities(a, b *SparseSet) []Entity {
	if a == nil || b == nil {
		return nil
	}
	// iterate smaller set
	if a.Len() > b.Len() {
		a, b = b, a
	}
	out := make([]Entity, 0, a.Len())
	for _, e := range a.dense {
		if b.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// snapshot copies the dense list so callers may mutate the set while
// iterating.
func snapshot(s *SparseSet) []Entity {
	if s == nil || s.Len() == 0 {
		return nil
	}
	return append([]Entity(nil), s.dense...)
}
