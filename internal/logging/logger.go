// Package logging provides config-driven categorized logging for labadmin.
// Each subsystem asks for its category logger; all of them share one zap core.
// Logging is controlled by debug_mode in the config - when false, every category
// logger is a no-op so the terminal UI is never written over.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"labadmin/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Config load, bootstrap data
	CategoryAPI     Category = "api"     // Backend HTTP calls
	CategoryStore   Category = "store"   // Collection loads and swaps
	CategorySession Category = "session" // Edit sessions, submits, deletes
	CategoryJournal Category = "journal" // Activity journal writes
	CategoryUI      Category = "ui"      // Terminal UI events
)

var (
	mu     sync.RWMutex
	base   = zap.NewNop()
	cfg    config.LoggingConfig
	forced bool // SetBase bypasses debug_mode and category toggles
)

// Initialize builds the shared logger from c. With debug_mode off it installs a
// no-op logger and returns nil.
func Initialize(c config.LoggingConfig) error {
	mu.Lock()
	defer mu.Unlock()

	cfg = c
	forced = false
	if !c.DebugMode {
		base = zap.NewNop()
		return nil
	}

	level, err := zapcore.ParseLevel(orDefault(c.Level, "info"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if zc.Encoding, err = c.Encoding(); err != nil {
		return err
	}

	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{c.File}
		zc.ErrorOutputPaths = []string{c.File}
	}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	base = l
	return nil
}

// SetBase installs l for every category regardless of config. Used by the
// --verbose flag and by tests.
func SetBase(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	base = l
	forced = true
}

// Get returns the logger for category. Disabled categories get a no-op logger.
func Get(category Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !forced && !cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return base.Named(string(category))
}

// Sync flushes buffered entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
