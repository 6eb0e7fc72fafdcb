package system

import (
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// EmitterSyncSystem moves spatial sinks whose entity moved.
type EmitterSyncSystem struct{}

func NewEmitterSyncSystem() *EmitterSyncSystem {
	return &EmitterSyncSystem{}
}

func (s *EmitterSyncSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	scale := spatialScale(w)
	ecs.ForEach2(w, component.GlobalTransformComponent.Kind(), component.SpatialAudioSinkComponent.Kind(),
		func(e ecs.Entity, gt *component.GlobalTransform, sink *component.SpatialAudioSink) {
			if !ecs.Changed(w, e, component.GlobalTransformComponent.Kind()) {
				return
			}
			sink.Sink.SetEmitterPosition(scale.Apply(gt.Translation))
		})
}

// ListenerSyncSystem re-pans every spatial sink when the listener moves, the
// listener set changes or the spatial scale changes.
type ListenerSyncSystem struct {
	last ecs.Entity
}

func NewListenerSyncSystem() *ListenerSyncSystem {
	return &ListenerSyncSystem{}
}

func (s *ListenerSyncSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if !s.listenerChanged(w) {
		return
	}
	scale := spatialScale(w)
	left, right := listenerEars(w, scale, false)
	ecs.ForEach(w, component.SpatialAudioSinkComponent.Kind(), func(_ ecs.Entity, sink *component.SpatialAudioSink) {
		sink.Sink.SetEarsPosition(left, right)
	})
}

func (s *ListenerSyncSystem) listenerChanged(w *ecs.World) bool {
	current, _, _, _ := activeListener(w, false)
	changed := current != s.last
	s.last = current

	if ecs.AnyChanged(w, component.SpatialScaleComponent.Kind()) ||
		ecs.AnyChanged(w, component.SpatialListenerComponent.Kind()) {
		changed = true
	}
	for _, e := range ecs.Query(w, component.SpatialListenerComponent.Kind()) {
		if ecs.Changed(w, e, component.GlobalTransformComponent.Kind()) {
			changed = true
		}
	}
	return changed
}
