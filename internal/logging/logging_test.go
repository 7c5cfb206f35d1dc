package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewNopWithoutPath(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Must be safe to use even though nothing is written
	logger.Info("discarded")
}

func TestNewWritesFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "logs", "atcmd.log")

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Info("session opened", zap.String("device", "/dev/ttyUSB0"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session opened")
	assert.Contains(t, string(data), `"device":"/dev/ttyUSB0"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "atcmd.log")
	cfg.Level = "loud"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"", "debug", "info", "warn", "error"} {
		_, err := parseLevel(name)
		assert.NoError(t, err, "level %q", name)
	}
}
