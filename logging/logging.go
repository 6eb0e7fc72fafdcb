// Package logging wires every package logger to one slog backend.
package logging

import (
	"fmt"
	"io"
	"sort"

	"github.com/decred/slog"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs/entity"
	"github.com/milk9111/spatialaudio/ecs/system"
	"github.com/milk9111/spatialaudio/prefabs"
)

// subsystems maps each tag to the package it logs for.
var subsystems = map[string]func(slog.Logger){
	"AUDI": audio.UseLogger,
	"DEVC": device.UseLogger,
	"ASET": assets.UseLogger,
	"SYST": system.UseLogger,
	"ENTY": entity.UseLogger,
	"PRFB": prefabs.UseLogger,
}

// Loggers owns the backend and the per-subsystem loggers.
type Loggers struct {
	backend *slog.Backend
	loggers map[string]slog.Logger
}

// Setup sends every subsystem to w at level ("trace" through "off").
func Setup(w io.Writer, level string) (*Loggers, error) {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return nil, fmt.Errorf("logging: unknown level %q", level)
	}
	l := &Loggers{
		backend: slog.NewBackend(w),
		loggers: make(map[string]slog.Logger, len(subsystems)),
	}
	for tag, use := range subsystems {
		logger := l.backend.Logger(tag)
		logger.SetLevel(lvl)
		use(logger)
		l.loggers[tag] = logger
	}
	return l, nil
}

// Logger returns a logger for a binary's own tag, at the level of the rest.
func (l *Loggers) Logger(tag string, level slog.Level) slog.Logger {
	logger := l.backend.Logger(tag)
	logger.SetLevel(level)
	return logger
}

// SetLevel changes one subsystem, or all of them when tag is empty.
func (l *Loggers) SetLevel(tag, level string) error {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("logging: unknown level %q", level)
	}
	if tag == "" {
		for _, logger := range l.loggers {
			logger.SetLevel(lvl)
		}
		return nil
	}
	logger, ok := l.loggers[tag]
	if !ok {
		return fmt.Errorf("logging: unknown subsystem %q", tag)
	}
	logger.SetLevel(lvl)
	return nil
}

// Tags lists the subsystem tags.
func Tags() []string {
	tags := make([]string, 0, len(subsystems))
	for tag := range subsystems {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
