package config

import (
	"fmt"
	"strings"
)

// LogFormats maps the accepted logging.format values to zap encodings.
var LogFormats = map[string]string{
	"":        "json",
	"json":    "json",
	"text":    "console",
	"console": "console",
}

// LogLevels lists the accepted logging.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// LoggingConfig controls the debug log of the console. Nothing is written
// unless DebugMode is set.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn or error
	Format     string          `yaml:"format"`     // json or text
	File       string          `yaml:"file"`       // empty writes to stderr
	DebugMode  bool            `yaml:"debug_mode"` // master switch
	Categories map[string]bool `yaml:"categories"` // boot, api, store, session, journal, ui
}

// IsCategoryEnabled reports whether category logs. Categories missing from
// the map follow DebugMode.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, listed := c.Categories[category]
	return !listed || enabled
}

// Encoding returns the zap encoding for Format.
func (c *LoggingConfig) Encoding() (string, error) {
	enc, ok := LogFormats[strings.ToLower(c.Format)]
	if !ok {
		return "", fmt.Errorf("invalid log format %q (valid: json, text)", c.Format)
	}
	return enc, nil
}

func (c *LoggingConfig) validate() error {
	if _, err := c.Encoding(); err != nil {
		return err
	}
	if c.Level == "" {
		return nil
	}
	for _, l := range LogLevels {
		if strings.EqualFold(c.Level, l) {
			return nil
		}
	}
	return fmt.Errorf("invalid log level %q (valid: %s)", c.Level, strings.Join(LogLevels, ", "))
}
