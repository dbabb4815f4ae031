// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup(slog.LevelInfo)
//	logger := logging.New(os.Stdout, slog.LevelDebug, false)
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs a tint handler on stderr as the default slog logger.
// Colors are enabled only when stderr is a terminal.
func Setup(level slog.Level) {
	slog.SetDefault(New(os.Stderr, level, isatty.IsTerminal(os.Stderr.Fd())))
}

// New returns a tint-backed logger writing to w.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
		NoColor:    !color,
	}))
}
