package ecs

// entityStore tracks slot generations, liveness and spawn order.
type entityStore struct {
	gens   []generation
	alive  []bool
	serial []uint64
	free   []entityID
	spawns uint64
	count  int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return NoEntity
	}
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gens = append(s.gens, 0)
		s.alive = append(s.alive, false)
		s.serial = append(s.serial, 0)
		id = entityID(len(s.gens))
	}
	idx := int(id) - 1
	s.spawns++
	s.alive[idx] = true
	s.serial[idx] = s.spawns
	s.count++
	return makeEntity(id, s.gens[idx])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := int(e.id()) - 1
	s.alive[idx] = false
	s.gens[idx]++
	s.serial[idx] = 0
	s.free = append(s.free, e.id())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil {
		return false
	}
	id := e.id()
	if id == 0 || int(id) > len(s.gens) {
		return false
	}
	idx := int(id) - 1
	return s.alive[idx] && s.gens[idx] == e.generation()
}

// spawnSerial orders entities by creation; 0 for dead handles.
func (s *entityStore) spawnSerial(e Entity) uint64 {
	if !s.isAlive(e) {
		return 0
	}
	return s.serial[int(e.id())-1]
}

func (s *entityStore) all() []Entity {
	if s == nil {
		return nil
	}
	out := make([]Entity, 0, s.count)
	for idx, alive := range s.alive {
		if alive {
			out = append(out, makeEntity(entityID(idx+1), s.gens[idx]))
		}
	}
	return out
}
