// Package logger wraps zap construction so that both binaries configure
// logging the same way.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger holds the shared zap instance.
type Logger struct {
	// Log is the configured zap logger. Nil until Init succeeds.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap instance so callers can log
// safely before Init runs.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug", "Info",
// "Warn", "Error"). It replaces the no-op instance from New.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	l.Log = logger
	return nil
}
