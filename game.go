package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/common"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
	"github.com/milk9111/spatialaudio/ecs/entity"
	"github.com/milk9111/spatialaudio/ecs/system"
	"github.com/milk9111/spatialaudio/prefabs"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = common.BaseWidth
	baseHeight = common.BaseHeight

	blipPrefab   = "blip.yaml"
	volumeStep   = 0.1
	maxVolume    = 2.0
	spawnMinGap  = 24.0
	earMarkerLen = 6
)

var musicTracks = []string{"sounds/chime.wav", "sounds/drone.wav", "sounds/pulse.wav"}

type Game struct {
	frames int
	debug  bool

	world   *ecs.World
	physics *system.PhysicsSystem
	out     *device.Output
	server  *assets.Server
	watcher *prefabs.Watcher

	listener ecs.Entity
	emitters []string
	next     int
	track    int
	volume   float64

	started  int
	finished int

	showMixer bool
	mixer     *ebitenui.UI
	status    string
}

func NewGame(cfg prefabs.AudioConfigSpec, out *device.Output, debug bool) (*Game, error) {
	server := assets.NewServer(assets.ServerConfig{Root: "assets"})

	g := &Game{
		debug:  debug,
		world:  ecs.NewWorld(),
		out:    out,
		server: server,
		volume: cfg.Volume().Volume.Get(),
		track:  -1,
	}

	cues := system.NewCueScriptSystem(server)
	g.physics = system.NewPhysicsSystem(baseWidth, baseHeight)
	g.world.AddSystem(g.physics)
	g.world.AddSystem(cues)
	g.world.AddSystem(system.NewTTLSystem())
	g.world.AddSystem(system.NewMusicSystem(server))
	g.world.AddSystem(system.NewHotReloadSystem(server, cues, func(w *ecs.World, prefab string, old ecs.Entity) error {
		return entity.Rebuild(w, server, prefab, old)
	}))
	system.AddAudioSystems(g.world, out, server, system.AudioOptions{
		GlobalVolume: cfg.Volume(),
		SpatialScale: cfg.Scale(),
	})

	listener, err := entity.NewListener(g.world, server, baseWidth/2, baseHeight/2)
	if err != nil {
		return nil, err
	}
	g.listener = listener

	if _, err := entity.NewAmbience(g.world, server); err != nil {
		return nil, err
	}
	if _, err := entity.NewMusicPlayer(g.world, server); err != nil {
		return nil, err
	}

	emitters, err := prefabs.List("emitter_")
	if err != nil {
		return nil, err
	}
	g.emitters = emitters
	for i, name := range emitters {
		x := float64(baseWidth) * float64(i+1) / float64(len(emitters)+1)
		if _, err := entity.SpawnAt(g.world, server, name, x, baseHeight/3); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", name, err)
		}
	}

	watcher, err := prefabs.NewWatcher("prefabs", "prefabs/scripts", "assets/sounds")
	if err != nil {
		log.Warnf("Hot reload disabled: %v", err)
	} else {
		g.watcher = watcher
	}

	return g, nil
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.showMixer = !g.showMixer
		if g.showMixer {
			// Rebuilt so the labels show values changed from the keyboard.
			g.mixer = NewMixerUI(g)
		}
	}
	if g.showMixer {
		g.mixer.Update()
	} else {
		g.handleInput()
	}

	if g.watcher != nil {
		for _, path := range g.watcher.Drain() {
			log.Infof("Reloading %s", path)
			system.RequestReload(g.world, path)
		}
	}

	g.world.Update()
	for _, evt := range g.world.Events().Drain() {
		switch evt.Type {
		case system.EventPlaybackStarted:
			g.started++
		case system.EventPlaybackFinished:
			g.finished++
		}
		if p, ok := evt.Data.(system.PlaybackEvent); ok && g.debug {
			log.Debugf("%s %s entity=%d", evt.Type, p.Asset, p.Entity)
		}
	}
	return nil
}

func (g *Game) handleInput() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	if ecs.IsAlive(g.world, g.listener) {
		if err := entity.SetEntityTransform(g.world, g.listener, x, y, 0); err != nil {
			log.Warnf("Move listener: %v", err)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.spawn(blipPrefab, x, y)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && len(g.emitters) > 0 {
		g.spawn(g.emitters[g.next%len(g.emitters)], x, y)
		g.next++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.nextTrack()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.stopMusic()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.pauseAll(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.pauseAll(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.changeVolume(volumeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.changeVolume(-volumeStep)
	}
}

// spawn refuses to stack emitters on top of the listener; an emitter sitting
// between the ears has no direction.
func (g *Game) spawn(prefab string, x, y float64) {
	if t, ok := ecs.Get(g.world, g.listener, component.TransformComponent.Kind()); ok {
		dx, dy := t.X-x, t.Y-y
		if dx*dx+dy*dy < spawnMinGap*spawnMinGap {
			return
		}
	}
	if _, err := entity.SpawnAt(g.world, g.server, prefab, x, y); err != nil {
		log.Warnf("Spawn %s: %v", prefab, err)
		g.status = err.Error()
	}
}

func (g *Game) nextTrack() {
	g.track = (g.track + 1) % len(musicTracks)
	system.RequestMusic(g.world, musicTracks[g.track])
	g.status = "music: " + musicTracks[g.track]
}

func (g *Game) stopMusic() {
	system.StopMusic(g.world)
	g.status = "music: stopped"
}

func (g *Game) pauseAll(pause bool) {
	cmd := component.PlaybackCommand{Play: !pause, Pause: pause}
	n := system.SendPlaybackCommandAll(g.world, cmd)
	if pause {
		g.status = fmt.Sprintf("paused %d sinks", n)
	} else {
		g.status = fmt.Sprintf("resumed %d sinks", n)
	}
}

// changeVolume applies to sounds started afterwards; playing sinks keep the
// volume they were created with.
func (g *Game) changeVolume(delta float64) {
	g.volume = common.Clamp(g.volume+delta, 0, maxVolume)
	system.SetGlobalVolume(g.world, audio.NewGlobalVolume(g.volume))
	g.status = fmt.Sprintf("global volume %.1f", g.volume)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	ecs.ForEach2(g.world, component.AppearanceComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, a *component.Appearance, t *component.Transform) {
		clr := a.Color
		if clr == nil {
			clr = colornames.White
		}
		if ecs.Has(g.world, e, component.SpatialAudioSinkComponent.Kind()) {
			vector.StrokeCircle(screen, float32(t.X), float32(t.Y), float32(a.Radius+4), 1, colornames.Lightgrey, true)
		}
		vector.FillCircle(screen, float32(t.X), float32(t.Y), float32(a.Radius), clr, true)
	})
	g.drawEars(screen)
	if g.debug {
		drawPhysicsDebug(g.physics.Space(), screen)
	}

	ebitenutil.DebugPrint(screen, g.hud())

	if g.showMixer {
		g.mixer.Draw(screen)
	}
}

// drawEars marks where the listener's ears are in screen space.
func (g *Game) drawEars(screen *ebiten.Image) {
	l, ok := ecs.Get(g.world, g.listener, component.SpatialListenerComponent.Kind())
	if !ok {
		return
	}
	gt, ok := ecs.Get(g.world, g.listener, component.GlobalTransformComponent.Kind())
	if !ok {
		return
	}
	for _, ear := range []struct {
		clr color.Color
		at  mgl64.Vec3
	}{
		{colornames.Skyblue, gt.TransformPoint(l.LeftEarOffset)},
		{colornames.Salmon, gt.TransformPoint(l.RightEarOffset)},
	} {
		x, y := float32(ear.at.X()), float32(ear.at.Y())
		vector.StrokeLine(screen, x, y-earMarkerLen, x, y+earMarkerLen, 2, ear.clr, true)
	}
}

func (g *Game) hud() string {
	s := fmt.Sprintf("Frames: %d    FPS: %.2f\n", g.frames, ebiten.ActualFPS())
	s += fmt.Sprintf("Output: %s available=%v sinks=%d\n", g.out.Backend(), g.out.Available(), g.out.SinkCount())
	s += fmt.Sprintf("Started: %d  Finished: %d  Volume: %.1f\n", g.started, g.finished, g.volume)
	s += "LMB blip  RMB emitter  N next song  S stop song  P/R pause/resume  -/= volume  F1 debug  Esc mixer\n"
	if g.status != "" {
		s += g.status + "\n"
	}
	return s
}

// Close stops the file watcher. The audio output stays open until exit.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
