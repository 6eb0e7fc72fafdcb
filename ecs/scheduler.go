package ecs

// Condition gates a system; it is evaluated every frame before the system
// would run.
type Condition func(w *World) bool

// Scheduler groups systems that share a run condition. Added to a world
// with World.AddScheduler each member keeps its own change-detection
// bookkeeping.
type Scheduler struct {
	systems []System
	cond    Condition
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// RunIf sets the condition shared by every system in the set.
func (s *Scheduler) RunIf(cond Condition) *Scheduler {
	s.cond = cond
	return s
}

// Update runs the set directly, for callers that drive it outside a world
// schedule.
func (s *Scheduler) Update(w *World) {
	if s.cond != nil && !s.cond(w) {
		return
	}
	for _, system := range s.systems {
		system.Update(w)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
