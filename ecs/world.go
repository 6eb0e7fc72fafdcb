package ecs

import "github.com/milk9111/spatialaudio/ecs/component"

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// Disposer is implemented by component values that own resources outside
// the world. Dispose is called once the value leaves the world, whether by
// removal, replacement or entity destruction.
type Disposer interface {
	Dispose()
}

type systemEntry struct {
	system  System
	cond    Condition
	lastRun uint32
}

// World owns entities, component stores, and system order.
//
// Every system run gets a fresh tick. Component writes are stamped with the
// current tick, so a system sees a value as changed when it was written
// after that system's previous run.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	systems  []*systemEntry
	events   EventQueue

	tick    uint32
	lastRun uint32
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*SparseSet),
		tick:   1,
	}
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	w.AddSystemIf(s, nil)
}

// AddSystemIf appends a system that only runs while cond holds.
func (w *World) AddSystemIf(s System, cond Condition) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, &systemEntry{system: s, cond: cond})
}

// AddScheduler appends every system of the set, sharing its condition.
func (w *World) AddScheduler(s *Scheduler) {
	if w == nil || s == nil {
		return
	}
	for _, system := range s.systems {
		w.AddSystemIf(system, s.cond)
	}
}

// Update runs all systems once.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.events.flush()
	for _, entry := range w.systems {
		if entry.cond != nil && !entry.cond(w) {
			continue
		}
		w.tick++
		w.lastRun = entry.lastRun
		entry.system.Update(w)
		entry.lastRun = w.tick
	}
	// host writes between frames land on a tick newer than every system run
	w.tick++
	w.lastRun = w.tick
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Tick returns the current change tick.
func (w *World) Tick() uint32 {
	if w == nil {
		return 0
	}
	return w.tick
}

func (w *World) store(id component.ComponentID) *SparseSet {
	if w == nil || w.stores == nil {
		return nil
	}
	return w.stores[id]
}

func (w *World) ensureStore(id component.ComponentID) *SparseSet {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s, ok := w.stores[id]
	if !ok {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

func (w *World) changedSinceLastRun(s *SparseSet, e Entity) bool {
	tick, ok := s.Tick(e)
	return ok && tick > w.lastRun
}

func dispose(v any) {
	if d, ok := v.(Disposer); ok && d != nil {
		d.Dispose()
	}
}
