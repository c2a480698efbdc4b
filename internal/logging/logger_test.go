package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("synthesized", "resources", 42)
	assert.Contains(t, buf.String(), "msg=synthesized")
	assert.Contains(t, buf.String(), "resources=42")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf, JSON: true})

	logger.Debug("loading config", "path", "network.yaml")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "loading config", entry["msg"])
	assert.Equal(t, "network.yaml", entry["path"])
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())

	logger.Warn("should not appear")
	assert.Empty(t, buf.String())

	logger.Error("boom")
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	l := logger.WithComponent("watch")
	l.Info("rebuilding")
	assert.True(t, strings.Contains(buf.String(), "component=watch"))

	// Children share the parent's level.
	buf.Reset()
	logger.SetLevel(LevelError)
	l.Info("quiet")
	assert.Empty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nowhere")
	assert.Equal(t, LevelError, logger.GetLevel())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.NotNil(t, cfg.Output)
	assert.False(t, cfg.JSON)
}
