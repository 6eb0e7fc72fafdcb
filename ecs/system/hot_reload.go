package system

import (
	"path/filepath"
	"strings"

	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
	"github.com/milk9111/spatialaudio/prefabs"
)

// RespawnFunc rebuilds an entity from its prefab after the file changed.
type RespawnFunc func(w *ecs.World, prefab string, old ecs.Entity) error

// HotReloadSystem consumes ReloadRequest entities. Edited sounds are decoded
// again and every entity playing them restarts once the new data is in;
// edited cue scripts are recompiled; edited prefabs are rebuilt through
// Respawn.
type HotReloadSystem struct {
	server  *assets.Server
	cues    *CueScriptSystem
	respawn RespawnFunc
	// pending maps reloading sounds to the version they had when the
	// reload started.
	pending map[assets.Handle[*audio.Source]]uint64
}

func NewHotReloadSystem(server *assets.Server, cues *CueScriptSystem, respawn RespawnFunc) *HotReloadSystem {
	return &HotReloadSystem{
		server:  server,
		cues:    cues,
		respawn: respawn,
		pending: make(map[assets.Handle[*audio.Source]]uint64),
	}
}

// RequestReload queues path for the next frame.
func RequestReload(w *ecs.World, path string) {
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{Path: path})
}

func (s *HotReloadSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for _, ent := range ecs.Query(w, component.ReloadRequestComponent.Kind()) {
		req, _ := ecs.Get(w, ent, component.ReloadRequestComponent.Kind())
		if req != nil {
			s.reload(w, req.Path)
		}
		ecs.DestroyEntity(w, ent)
	}

	for h, version := range s.pending {
		if s.server.Sources.Version(h) == version {
			continue
		}
		delete(s.pending, h)
		s.restart(w, h)
	}
}

func (s *HotReloadSystem) reload(w *ecs.World, path string) {
	switch {
	case prefabs.IsScriptFile(path):
		if s.cues != nil {
			log.Infof("Cue script %s changed; recompiling", filepath.Base(path))
			s.cues.Invalidate()
		}
	case prefabs.IsSpecFile(path):
		s.respawnPrefab(w, filepath.Base(path))
	case audio.Supported(path):
		if s.server == nil {
			return
		}
		h, ok := s.server.Lookup(path)
		if !ok {
			// never loaded; nothing is playing it
			return
		}
		// The version is taken before the decode starts; a fast decode
		// would otherwise be mistaken for the old data.
		s.pending[h] = s.server.Sources.Version(h)
		s.server.Reload(path)
	default:
		log.Debugf("Ignoring change to %s", path)
	}
}

func (s *HotReloadSystem) respawnPrefab(w *ecs.World, name string) {
	if s.respawn == nil {
		return
	}
	var targets []ecs.Entity
	ecs.ForEach(w, component.PrefabComponent.Kind(), func(e ecs.Entity, p *component.Prefab) {
		if strings.EqualFold(filepath.Base(p.Path), name) {
			targets = append(targets, e)
		}
	})
	for _, e := range targets {
		if err := s.respawn(w, name, e); err != nil {
			log.Warnf("Failed to rebuild %s: %v", name, err)
		}
	}
}

// restart drops the sinks of every entity still playing h. Their requests
// are intact, so the playback pass starts them again with the new data.
// Finished sinks are left alone; a Once sound that already ended stays quiet.
func (s *HotReloadSystem) restart(w *ecs.World, h assets.Handle[*audio.Source]) {
	n := 0
	ecs.ForEach(w, component.AudioSourceComponent.Kind(), func(e ecs.Entity, handle *assets.Handle[*audio.Source]) {
		if handle.ID != h.ID {
			return
		}
		if !ecs.Has(w, e, component.PlaybackSettingsComponent.Kind()) {
			return
		}
		sink, ok := sinkOf(w, e)
		if !ok || sink.Empty() {
			return
		}
		removed := ecs.Remove(w, e, component.AudioSinkComponent.Kind())
		removed = ecs.Remove(w, e, component.SpatialAudioSinkComponent.Kind()) || removed
		ecs.Remove(w, e, component.PlaybackDespawnMarkerComponent.Kind())
		ecs.Remove(w, e, component.PlaybackRemoveMarkerComponent.Kind())
		if removed {
			n++
		}
	})
	log.Infof("Reloaded %s, restarted %d playbacks", h, n)
}
