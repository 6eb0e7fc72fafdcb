// Command audiorender runs the audio systems without a window or sound card
// and writes what the listener hears to a WAV file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/decred/slog"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/common"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/entity"
	"github.com/milk9111/spatialaudio/ecs/system"
	"github.com/milk9111/spatialaudio/logging"
	"github.com/milk9111/spatialaudio/prefabs"
)

var log = slog.Disabled

func main() {
	configPath := flag.String("config", "", "audio config yaml (default prefabs/audio.yaml)")
	outPath := flag.String("out", "render.wav", "output wav file")
	seconds := flag.Float64("seconds", 5, "length of the recording")
	fps := flag.Int("fps", 60, "world updates per second")
	spawn := flag.String("spawn", "ambience.yaml,emitter_hum.yaml,emitter_pulse.yaml,emitter_chimes.yaml", "comma separated prefabs to spawn")
	music := flag.Bool("music", false, "spawn the music player")
	sweep := flag.Bool("sweep", true, "move the listener left to right over the recording")
	logLevel := flag.String("loglevel", "", "log level (trace, debug, info, warn, error, critical, off)")
	flag.Parse()

	if err := run(*configPath, *outPath, *seconds, *fps, *spawn, *music, *sweep, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "audiorender: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outPath string, seconds float64, fps int, spawn string, music, sweep bool, logLevel string) error {
	cfg, err := prefabs.LoadAudioConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if logLevel == "" {
		logLevel = "info"
	}
	loggers, err := logging.Setup(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	lvl, _ := slog.LevelFromString(logLevel)
	log = loggers.Logger("REND", lvl)

	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	devCfg, err := cfg.Device.Config()
	if err != nil {
		return err
	}
	devCfg.Backend = device.BackendManual
	out := device.Open(devCfg)

	server := assets.NewServer(assets.ServerConfig{Root: "assets"})
	w := ecs.NewWorld()
	w.AddSystem(system.NewPhysicsSystem(common.BaseWidth, common.BaseHeight))
	w.AddSystem(system.NewCueScriptSystem(server))
	w.AddSystem(system.NewTTLSystem())
	if music {
		w.AddSystem(system.NewMusicSystem(server))
	}
	system.AddAudioSystems(w, out, server, system.AudioOptions{
		GlobalVolume: cfg.Volume(),
		SpatialScale: cfg.Scale(),
	})

	cx, cy := float64(common.BaseWidth)/2, float64(common.BaseHeight)/2
	listener, err := entity.NewListener(w, server, cx, cy)
	if err != nil {
		return err
	}
	names := splitList(spawn)
	for i, name := range names {
		x := float64(common.BaseWidth) * float64(i+1) / float64(len(names)+1)
		if _, err := entity.SpawnAt(w, server, name, x, cy); err != nil {
			return fmt.Errorf("spawn %s: %w", name, err)
		}
	}
	if music {
		if _, err := entity.NewMusicPlayer(w, server); err != nil {
			return err
		}
	}
	// Decode everything up front so the recording starts with sound.
	server.Wait()

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	rec := device.NewRecorder(out, f)

	rate := int(out.Format().SampleRate)
	total := int(seconds * float64(rate))
	perFrame := rate / fps
	if perFrame < 1 {
		perFrame = 1
	}
	updates := 0
	for rec.Frames() < total {
		if sweep {
			t := float64(rec.Frames()) / float64(total)
			if err := entity.SetEntityTransform(w, listener, common.Lerp(0, common.BaseWidth, t), cy, 0); err != nil {
				return err
			}
		}
		w.Update()
		for _, evt := range w.Events().Drain() {
			if p, ok := evt.Data.(system.PlaybackEvent); ok {
				log.Debugf("%s %s entity=%d", evt.Type, p.Asset, p.Entity)
			}
		}
		n := min(perFrame, total-rec.Frames())
		if err := rec.Record(n); err != nil {
			return err
		}
		updates++
	}
	if err := rec.Close(); err != nil {
		return err
	}
	log.Infof("Wrote %d frames (%d updates, %d sinks live) to %s", rec.Frames(), updates, out.SinkCount(), outPath)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
