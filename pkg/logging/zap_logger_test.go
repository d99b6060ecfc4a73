package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLogger(t *testing.T) {
	cfg := LoggerConfig{
		LogDir:      t.TempDir(),
		ProcessName: EventMonitorProcess,
		Environment: Development,
		UseColors:   false,
	}

	logger, err := NewZapLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	logger.Debugf("formatted %d", 42)

	// Log directory should exist for the process
	matches, err := filepath.Glob(filepath.Join(cfg.LogDir, LogsDir, string(cfg.ProcessName), "*.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestWithReturnsChildLogger(t *testing.T) {
	cfg := LoggerConfig{
		LogDir:      t.TempDir(),
		ProcessName: TriggersProcess,
		Environment: Production,
	}

	logger, err := NewZapLogger(cfg)
	require.NoError(t, err)

	child := logger.With("component", "test")
	require.NotNil(t, child)
	assert.NotSame(t, logger, child)
	child.Info("tagged message")
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig(EventMonitorProcess)
	assert.Equal(t, BaseDataDir, cfg.LogDir)
	assert.Equal(t, EventMonitorProcess, cfg.ProcessName)
	assert.Equal(t, Development, cfg.Environment)
	assert.True(t, cfg.UseColors)
}
