package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/logging"
	"github.com/milk9111/spatialaudio/prefabs"
)

var log = slog.Disabled

func main() {
	configPath := flag.String("config", "", "audio config yaml (default prefabs/audio.yaml)")
	backend := flag.String("backend", "", "override the device backend (oto, manual, none)")
	logLevel := flag.String("loglevel", "", "log level (trace, debug, info, warn, error, critical, off)")
	debug := flag.Bool("debug", false, "draw physics shapes and log every playback event")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := prefabs.LoadAudioConfig(*configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	if *backend != "" {
		cfg.Device.Backend = *backend
	}
	level := *logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if level == "" {
		level = "info"
	}
	loggers, err := logging.Setup(os.Stderr, level)
	if err != nil {
		fatalf("%v", err)
	}
	lvl, _ := slog.LevelFromString(level)
	log = loggers.Logger("DEMO", lvl)

	devCfg, err := cfg.Device.Config()
	if err != nil {
		fatalf("config: %v", err)
	}
	out := device.Open(devCfg)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("spatialaudio")

	game, err := NewGame(cfg, out, *debug)
	if err != nil {
		fatalf("%v", err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Criticalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "spatialaudio: "+format+"\n", args...)
	os.Exit(1)
}
