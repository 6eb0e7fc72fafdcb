package entity

import (
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// NewAmbience starts the non-spatial background loop.
func NewAmbience(w *ecs.World, server *assets.Server) (ecs.Entity, error) {
	return BuildEntity(w, server, "ambience.yaml")
}

// NewListener builds the listener prefab at x, y.
func NewListener(w *ecs.World, server *assets.Server, x, y float64) (ecs.Entity, error) {
	e, err := BuildEntity(w, server, "listener.yaml")
	if err != nil {
		return 0, err
	}
	return e, SetEntityTransform(w, e, x, y, 0)
}

// SpawnAt builds prefab and moves it to x, y.
func SpawnAt(w *ecs.World, server *assets.Server, prefab string, x, y float64) (ecs.Entity, error) {
	e, err := BuildEntity(w, server, prefab)
	if err != nil {
		return 0, err
	}
	if err := SetEntityTransform(w, e, x, y, 0); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

// Rebuild replaces old with a fresh copy of prefab, keeping its position.
// Used when the prefab file is edited.
func Rebuild(w *ecs.World, server *assets.Server, prefab string, old ecs.Entity) error {
	x, y, rot := 0.0, 0.0, 0.0
	t, hasTransform := ecs.Get(w, old, component.TransformComponent.Kind())
	if hasTransform {
		x, y, rot = t.X, t.Y, t.Rotation
	}
	e, err := BuildEntity(w, server, prefab)
	if err != nil {
		return err
	}
	ecs.DestroyEntity(w, old)
	if hasTransform {
		return SetEntityTransform(w, e, x, y, rot)
	}
	return nil
}
