package ecs

import (
	"sort"

	"github.com/milk9111/spatialaudio/ecs/component"
)

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return NoEntity
	}
	return w.entities.create()
}

// DestroyEntity removes every component of e, disposing them, and frees the
// slot. It reports false for dead handles.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		if v, ok := s.Remove(e); ok {
			dispose(v)
		}
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities lists all live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// SpawnSerial orders entities by creation time. Dead handles report 0.
func SpawnSerial(w *World, e Entity) uint64 {
	if w == nil {
		return 0
	}
	return w.entities.spawnSerial(e)
}

// Add attaches value to e, replacing (and disposing) any previous value of
// the same kind. Re-adding the same pointer only marks it changed.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	old, replaced := w.ensureStore(kind.ID()).Set(e, value, w.tick)
	if replaced {
		if prev, ok := old.(*T); !ok || prev != value {
			dispose(old)
		}
	}
	return nil
}

// Remove detaches and disposes e's component of the given kind.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := w.store(kind.ID())
	if s == nil {
		return false
	}
	v, ok := s.Remove(e)
	if ok {
		dispose(v)
	}
	return ok
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := w.store(kind.ID())
	return s != nil && s.Has(e)
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	s := w.store(kind.ID())
	if s == nil {
		return nil, false
	}
	v, ok := s.Get(e).(*T)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Changed reports whether e's component was written after the running
// system last ran. Outside a system it compares against the end of the
// last frame.
func Changed[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := w.store(kind.ID())
	if s == nil {
		return false
	}
	return w.changedSinceLastRun(s, e)
}

// AnyChanged reports whether any component of the kind changed since the
// running system last ran.
func AnyChanged[T any](w *World, kind component.ComponentKind[T]) bool {
	s := w.store(kind.ID())
	if s == nil {
		return false
	}
	for _, e := range s.dense {
		if w.changedSinceLastRun(s, e) {
			return true
		}
	}
	return false
}

// MarkChanged flags a component mutated in place through its pointer.
func MarkChanged[T any](w *World, e Entity, kind component.ComponentKind[T]) {
	if s := w.store(kind.ID()); s != nil {
		s.Touch(e, w.tick)
	}
}

// Count returns how many entities carry the kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	return w.store(kind.ID()).Len()
}

// Query returns the entities carrying kind, oldest first.
func Query[T any](w *World, kind component.ComponentKind[T]) []Entity {
	ents := snapshot(w.store(kind.ID()))
	sort.Slice(ents, func(i, j int) bool {
		return w.entities.spawnSerial(ents[i]) < w.entities.spawnSerial(ents[j])
	})
	return ents
}

// First returns the oldest entity carrying kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := w.store(kind.ID())
	if s == nil || s.Len() == 0 {
		return NoEntity, false
	}
	best := NoEntity
	var bestSerial uint64
	for _, e := range s.dense {
		serial := w.entities.spawnSerial(e)
		if serial == 0 {
			continue
		}
		if best == NoEntity || serial < bestSerial {
			best, bestSerial = e, serial
		}
	}
	return best, best != NoEntity
}

// ForEach calls fn for every entity carrying kind. fn may add or remove
// components and destroy entities.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	for _, e := range snapshot(w.store(kind.ID())) {
		v, ok := Get(w, e, kind)
		if !ok {
			continue
		}
		fn(e, v)
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	for _, e := range IntersectEntities(w.store(ka.ID()), w.store(kb.ID())) {
		a, ok := Get(w, e, ka)
		if !ok {
			continue
		}
		b, ok := Get(w, e, kb)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	for _, e := range IntersectEntities(w.store(ka.ID()), w.store(kb.ID())) {
		a, ok := Get(w, e, ka)
		if !ok {
			continue
		}
		b, ok := Get(w, e, kb)
		if !ok {
			continue
		}
		c, ok := Get(w, e, kc)
		if !ok {
			continue
		}
		fn(e, a, b, c)
	}
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	for _, e := range IntersectEntities(w.store(ka.ID()), w.store(kb.ID())) {
		a, ok := Get(w, e, ka)
		if !ok {
			continue
		}
		b, ok := Get(w, e, kb)
		if !ok {
			continue
		}
		c, ok := Get(w, e, kc)
		if !ok {
			continue
		}
		d, ok := Get(w, e, kd)
		if !ok {
			continue
		}
		fn(e, a, b, c, d)
	}
}
