// Package logging wraps log/slog the way DaemonDB's own pkg/logging does:
// a small init-once wrapper around a single process-wide *slog.Logger, with
// a safe default so a package never has to guard against a nil logger.
//
// The storage and execution packages in this module never reach for the
// package-level Logger directly — they accept a *slog.Logger in their
// constructors (Default() when the caller passes none) so tests can inject
// a silent or buffering logger instead of printing. This file is the one
// place a process wiring the engine together can get a ready-made logger
// without constructing its own slog.Handler.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu        sync.RWMutex
	processLg *slog.Logger
)

// Default returns the process-wide logger, lazily initializing a
// text-handler logger writing to stderr at Info level on first use.
func Default() *slog.Logger {
	mu.RLock()
	if processLg != nil {
		lg := processLg
		mu.RUnlock()
		return lg
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if processLg == nil {
		processLg = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return processLg
}

// SetDefault overrides the process-wide logger, e.g. to a JSON handler in
// production or a discard handler in tests that don't want log noise.
func SetDefault(lg *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	processLg = lg
}

// OrDefault returns lg if non-nil, else Default(). Every constructor in
// this module that accepts a *slog.Logger funnels it through this helper
// so "pass nil" is always a safe, supported spelling of "use the default".
func OrDefault(lg *slog.Logger) *slog.Logger {
	if lg != nil {
		return lg
	}
	return Default()
}

// Discard returns a logger that drops everything, for tests that want the
// engine's debug chatter silenced entirely.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
