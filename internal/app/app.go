package app

import (
	"io"
	"log/slog"

	"github.com/vk/declpipe/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: one descriptor registry, one logger, and the writers its
// results go to.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	lookup registry.Lookup
}

// NewApp returns a fully initialized App with its own isolated logger.
// Program output (converted pipelines) goes to outW; logs and rendered
// diagnostics go to errW. A nil lookup selects the built-in registry.
func NewApp(outW, errW io.Writer, cfg *Config, lookup registry.Lookup) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	if lookup == nil {
		lookup = registry.Builtin()
	}

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		lookup: lookup,
	}
}

// Lookup returns the app's descriptor registry. This is primarily for testing.
func (a *App) Lookup() registry.Lookup {
	return a.lookup
}
