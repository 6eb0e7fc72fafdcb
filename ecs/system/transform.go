package system

import (
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// TransformSystem copies local transforms into GlobalTransform. There is no
// hierarchy, so the global transform is the local one resolved.
type TransformSystem struct{}

func NewTransformSystem() *TransformSystem {
	return &TransformSystem{}
}

func (s *TransformSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, t *component.Transform) {
		global, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
		if ok && !ecs.Changed(w, e, component.TransformComponent.Kind()) {
			return
		}
		if !ok {
			_ = ecs.Add(w, e, component.GlobalTransformComponent.Kind(), &component.GlobalTransform{Transform: t.Resolve()})
			return
		}
		global.Transform = t.Resolve()
		ecs.MarkChanged(w, e, component.GlobalTransformComponent.Kind())
	})
}
