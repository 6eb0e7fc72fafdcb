package assets

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package logger.
func UseLogger(logger slog.Logger) {
	log = logger
}
