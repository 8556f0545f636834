package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labadmin/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_ProductionModeIsSilent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "labadmin.log")
	require.NoError(t, Initialize(config.LoggingConfig{DebugMode: false, File: logPath}))

	Get(CategoryAPI).Info("should not be written")
	_ = Sync()

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "no log file expected in production mode")
}

func TestInitialize_DebugModeWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "labadmin.log")
	require.NoError(t, Initialize(config.LoggingConfig{
		DebugMode: true,
		Level:     "debug",
		Format:    "json",
		File:      logPath,
		Categories: map[string]bool{
			"ui": false,
		},
	}))
	t.Cleanup(func() { _ = Initialize(config.LoggingConfig{}) })

	Get(CategoryAPI).Debug("request sent", zap.String("path", "/api/contacts/get-all-contacts"))
	Get(CategoryUI).Info("disabled category")
	require.NoError(t, Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"logger":"api"`)
	assert.Contains(t, content, "request sent")
	assert.False(t, strings.Contains(content, "disabled category"))
}

func TestInitialize_InvalidSettings(t *testing.T) {
	err := Initialize(config.LoggingConfig{DebugMode: true, Level: "loud"})
	assert.Error(t, err)

	err = Initialize(config.LoggingConfig{DebugMode: true, Format: "xml"})
	assert.Error(t, err)
}

func TestSetBase_BypassesDebugMode(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetBase(zap.New(core))
	t.Cleanup(func() { _ = Initialize(config.LoggingConfig{}) })

	Get(CategorySession).Info("submit", zap.String("entity", "contact"))

	entries := logs.FilterMessage("submit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "session", entries[0].LoggerName)
}
